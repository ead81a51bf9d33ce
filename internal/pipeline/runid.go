package pipeline

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewRunID returns a sortable, collision-resistant id such as 20260301T100000-1f2e3d4c.
func NewRunID() string {
	return newRunID(time.Now().UTC(), uuid.New())
}

func newRunID(now time.Time, id uuid.UUID) string {
	return now.Format("20060102T150405") + "-" + strings.ReplaceAll(id.String(), "-", "")[:8]
}
