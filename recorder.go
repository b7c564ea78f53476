package restclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/loykin/restclient/internal/store"
	"github.com/loykin/restclient/internal/store/postgresql"
	"github.com/loykin/restclient/internal/store/sqlite"
)

// Execution describes one Execute call as reported to a Recorder.
type Execution struct {
	RunID      string
	Method     string
	URL        string
	Output     string
	StatusCode int
	Value      any
	Body       []byte
	Err        error
	RanAt      time.Time
}

// Recorder receives a report for every Execute call. Its errors are logged
// and never fail the execution.
type Recorder interface {
	Record(ctx context.Context, e Execution) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, e Execution) error

func (f RecorderFunc) Record(ctx context.Context, e Execution) error { return f(ctx, e) }

// Store is the execution history store.
type Store = store.Store

// StoreConfig selects and configures a history store driver.
type StoreConfig = store.Config

// Run is one stored execution.
type Run = store.Run

// SQLiteConfig and PostgresConfig are the driver settings for StoreConfig.
type (
	SQLiteConfig   = sqlite.Config
	PostgresConfig = postgresql.Config
)

const (
	StoreDriverSqlite     = store.DriverSqlite
	StoreDriverPostgresql = store.DriverPostgresql
)

// OpenStore connects to the configured history store and ensures its schema.
func OpenStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	return store.Open(ctx, cfg)
}

// StoreTableNames derives the history table names from a prefix.
func StoreTableNames(prefix string) store.TableNames {
	return store.TableNamesFromPrefix(prefix)
}

// StoreRecorder writes executions to a Store.
type StoreRecorder struct {
	Store *Store
	// SaveBody keeps the raw response body alongside the value.
	SaveBody bool
}

// NewStoreRecorder returns a Recorder backed by s.
func NewStoreRecorder(s *Store, saveBody bool) *StoreRecorder {
	return &StoreRecorder{Store: s, SaveBody: saveBody}
}

func (r *StoreRecorder) Record(ctx context.Context, e Execution) error {
	run := store.Run{
		RunID:      e.RunID,
		Method:     e.Method,
		URL:        e.URL,
		StatusCode: e.StatusCode,
		Failed:     e.Err != nil,
		RanAt:      e.RanAt,
	}
	if e.Err != nil {
		run.Error = e.Err.Error()
	} else {
		b, err := json.Marshal(e.Value)
		if err != nil {
			return err
		}
		v := string(b)
		run.Value = &v
	}
	if r.SaveBody && e.Body != nil {
		body := string(e.Body)
		run.Body = &body
	}
	return r.Store.RecordRun(ctx, run)
}
