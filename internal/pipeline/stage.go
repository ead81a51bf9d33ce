package pipeline

import "fmt"

// Stage names one step of a run.
type Stage string

const (
	StageCompose          Stage = "compose"
	StageGenerate         Stage = "generate"
	StageStage            Stage = "stage"
	StageCaption          Stage = "caption"
	StagePublishPrimary   Stage = "publish_primary"
	StagePublishSecondary Stage = "publish_secondary"
	StageCleanup          Stage = "cleanup"
)

// StageError identifies the stage that aborted a run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
