package connector

import (
	"context"
	"database/sql"
	"time"
)

// Run is one recorded plugin execution from the execution_runs table.
// Value and Body may be nil when nothing was produced or saved.
type Run struct {
	ID         int64
	RunID      string
	Method     string
	URL        string
	StatusCode int
	Value      *string // JSON of the merged value
	Body       *string
	Failed     bool
	Error      string
	RanAt      time.Time
}

// TableNames represents database table names
type TableNames struct {
	ExecutionRuns string
}

// Connector is implemented by each history database driver.
type Connector interface {
	Connect() (*sql.DB, error)
	Load(config map[string]interface{}) error
	Ensure(ctx context.Context, th TableNames) error
	RecordRun(ctx context.Context, th TableNames, run Run) error
	// ListRuns returns at most limit runs, newest first; limit <= 0 means all.
	ListRuns(ctx context.Context, th TableNames, limit int) ([]Run, error)
	Close() error
}
