package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/loykin/restclient/internal/common"
	"github.com/loykin/restclient/internal/retry"
	"github.com/loykin/restclient/internal/store/connector"
)

type Store struct {
	db      *sql.DB
	dialect *Dialect
	DSN     string
	Retry   *retry.Config
}

// NewStore creates a new SQLite store
func NewStore() *Store {
	return &Store{
		dialect: NewDialect(),
	}
}

// NewStoreWithDB wraps an already opened database handle.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db, dialect: NewDialect()}
}

// Load loads configuration into the SQLite store
func (s *Store) Load(config map[string]interface{}) error {
	if dsn, ok := config["dsn"].(string); ok && dsn != "" {
		s.DSN = dsn
		return nil
	}
	if path, ok := config["path"].(string); ok && path != "" {
		s.DSN = fmt.Sprintf("file:%s?_busy_timeout=%d&%s", path, busyTimeoutMS, foreignKeysParam)
	}
	return nil
}

// Connect establishes a connection to SQLite
func (s *Store) Connect() (*sql.DB, error) {
	if s.DSN == "" {
		s.DSN = ":memory:"
	}

	db, err := s.dialect.Connect(s.DSN)
	if err != nil {
		return nil, err
	}
	s.db = db

	logger := common.GetLogger().WithStore(s.dialect.GetDriverName())
	logger.Info("SQLite database connection established successfully")
	return db, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure creates the necessary tables using SQLite-specific schema
func (s *Store) Ensure(ctx context.Context, th connector.TableNames) error {
	if s.db == nil {
		return errors.New("sqlite store is not connected")
	}
	logger := common.GetLogger().WithStore(s.dialect.GetDriverName())
	logger.Debug("ensuring SQLite database schema", "table", th.ExecutionRuns)

	for i, q := range s.dialect.GetEnsureStatements(th.ExecutionRuns) {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			logger.Error("failed to run schema statement", "error", err, "statement_index", i+1, "sql", q)
			return fmt.Errorf("failed to run schema statement %d: %w", i+1, err)
		}
	}
	logger.Info("SQLite database schema ensured successfully")
	return nil
}

// RecordRun inserts one execution record
func (s *Store) RecordRun(ctx context.Context, th connector.TableNames, run connector.Run) error {
	if s.db == nil {
		return errors.New("sqlite store is not connected")
	}
	logger := common.GetLogger().WithStore(s.dialect.GetDriverName()).WithRun(run.RunID)
	logger.Debug("recording execution run", "method", run.Method, "status", run.StatusCode, "failed", run.Failed)

	ph := s.dialect.GetPlaceholder()
	q := fmt.Sprintf("INSERT INTO %s(run_id, method, url, status_code, value_json, body, failed, error, ran_at) VALUES(%s,%s,%s,%s,%s,%s,%s,%s,%s)",
		th.ExecutionRuns, ph, ph, ph, ph, ph, ph, ph, ph, ph)

	_, err := retry.Exec(ctx, s.Retry, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, q,
			run.RunID, run.Method, run.URL, run.StatusCode, run.Value, run.Body,
			s.dialect.ConvertBoolToStorage(run.Failed), run.Error,
			s.dialect.ConvertTimeToStorage(run.RanAt))
	})
	if err != nil {
		logger.Error("failed to record execution run", "error", err)
		return fmt.Errorf("failed to record execution run %s: %w", run.RunID, err)
	}
	logger.Info("execution run recorded successfully")
	return nil
}

// ListRuns returns recorded runs newest first
func (s *Store) ListRuns(ctx context.Context, th connector.TableNames, limit int) ([]connector.Run, error) {
	if s.db == nil {
		return nil, errors.New("sqlite store is not connected")
	}
	logger := common.GetLogger().WithStore(s.dialect.GetDriverName())
	logger.Debug("listing execution runs", "limit", limit)

	q := fmt.Sprintf("SELECT id, run_id, method, url, status_code, value_json, body, failed, error, ran_at FROM %s ORDER BY id DESC", th.ExecutionRuns)
	var args []interface{}
	if limit > 0 {
		q += " LIMIT " + s.dialect.GetPlaceholder()
		args = append(args, limit)
	}

	rows, err := retry.Query(ctx, s.Retry, func() (*sql.Rows, error) {
		return s.db.QueryContext(ctx, q, args...)
	})
	if err != nil {
		logger.Error("failed to query execution runs", "error", err)
		return nil, fmt.Errorf("failed to list execution runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []connector.Run
	for rows.Next() {
		var run connector.Run
		var value, body sql.NullString
		var failed int64
		var ranAt string
		if err := rows.Scan(&run.ID, &run.RunID, &run.Method, &run.URL, &run.StatusCode, &value, &body, &failed, &run.Error, &ranAt); err != nil {
			logger.Error("failed to scan execution run", "error", err)
			return nil, fmt.Errorf("failed to scan execution run: %w", err)
		}
		if value.Valid {
			run.Value = &value.String
		}
		if body.Valid {
			run.Body = &body.String
		}
		run.Failed = s.dialect.ConvertBoolFromStorage(failed)
		run.RanAt = s.dialect.ConvertTimeFromStorage(ranAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		logger.Error("error iterating execution runs", "error", err)
		return nil, fmt.Errorf("error iterating execution runs: %w", err)
	}

	logger.Debug("execution runs listed successfully", "count", len(runs))
	return runs, nil
}
