package repo

import (
	"context"
	"time"

	"autopost/internal/domain"
	"autopost/internal/infra"
	"autopost/internal/sqlinline"
)

// RunRepositoryPG implements domain.RunRepository.
type RunRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewRunRepository creates a run ledger backed by PostgreSQL.
func NewRunRepository(sql infra.SQLExecutor) *RunRepositoryPG {
	return &RunRepositoryPG{sql: sql}
}

// Create records a run as started.
func (r *RunRepositoryPG) Create(ctx context.Context, run *domain.Run) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertPipelineRun,
		run.ID,
		run.Backend,
		run.Mode,
		string(run.Status),
		run.Stage,
		run.StartedAt,
	)
	return err
}

// Finish stores the terminal state of a run.
func (r *RunRepositoryPG) Finish(ctx context.Context, run *domain.Run) error {
	finished := time.Now().UTC()
	if run.FinishedAt != nil {
		finished = *run.FinishedAt
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QFinishPipelineRun,
		run.ID,
		string(run.Status),
		run.Stage,
		run.Prompt,
		run.PublicURL,
		run.Caption,
		run.ContentFiltered,
		run.ErrorMessage,
		finished,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListRecent returns the newest runs first.
func (r *RunRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListRecentPipelineRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var (
			run    domain.Run
			status string
		)
		if err := rows.Scan(
			&run.ID,
			&run.Backend,
			&run.Mode,
			&status,
			&run.Stage,
			&run.Prompt,
			&run.PublicURL,
			&run.Caption,
			&run.ContentFiltered,
			&run.ErrorMessage,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, err
		}
		run.Status = domain.RunStatus(status)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// EnsureSchema creates the ledger tables when missing.
func EnsureSchema(ctx context.Context, sql infra.SQLExecutor) error {
	_, err := sql.Exec(ctx, sqlinline.QCreateSchema)
	return err
}

var _ domain.RunRepository = (*RunRepositoryPG)(nil)
