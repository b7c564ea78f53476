package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

// NewStore creates a new PostgreSQL store
func NewStore() *Store {
	return &Store{
		dialect: NewDialect(),
	}
}

// NewStoreWithDB wraps an already opened database handle.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db, dialect: NewDialect()}
}

// Load loads configuration into the PostgreSQL store
func (p *Store) Load(config map[string]interface{}) error {
	if dsn, ok := config["dsn"].(string); ok && dsn != "" {
		p.DSN = dsn
	}
	return nil
}

// Connect establishes a connection to PostgreSQL
func (p *Store) Connect() (*sql.DB, error) {
	if p.DSN == "" {
		return nil, errors.New("postgresql store requires a dsn or host")
	}
	db, err := p.dialect.Connect(p.DSN)
	if err != nil {
		return nil, err
	}
	p.db = db

	logger := common.GetLogger().WithStore(p.dialect.GetDriverName())
	logger.Info("PostgreSQL database connection established successfully")
	return db, nil
}

// Close closes the database connection
func (p *Store) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Ensure creates the necessary tables using PostgreSQL-specific schema
func (p *Store) Ensure(ctx context.Context, th connector.TableNames) error {
	if p.db == nil {
		return errors.New("postgresql store is not connected")
	}
	logger := common.GetLogger().WithStore(p.dialect.GetDriverName())
	logger.Debug("ensuring PostgreSQL database schema", "table", th.ExecutionRuns)

	for i, q := range p.dialect.GetEnsureStatements(th.ExecutionRuns) {
		if _, err := p.db.ExecContext(ctx, q); err != nil {
			logger.Error("failed to run schema statement", "error", err, "statement_index", i+1, "sql", q)
			return fmt.Errorf("failed to run PostgreSQL schema statement %d: %w", i+1, err)
		}
	}
	logger.Info("PostgreSQL database schema ensured successfully")
	return nil
}

// RecordRun inserts one execution record
func (p *Store) RecordRun(ctx context.Context, th connector.TableNames, run connector.Run) error {
	if p.db == nil {
		return errors.New("postgresql store is not connected")
	}
	logger := common.GetLogger().WithStore(p.dialect.GetDriverName()).WithRun(run.RunID)
	logger.Debug("recording execution run", "method", run.Method, "status", run.StatusCode, "failed", run.Failed)

	d := p.dialect
	q := fmt.Sprintf("INSERT INTO %s(run_id, method, url, status_code, value_json, body, failed, error, ran_at) VALUES(%s,%s,%s,%s,%s,%s,%s,%s,%s)",
		th.ExecutionRuns,
		d.GetPlaceholder(1), d.GetPlaceholder(2), d.GetPlaceholder(3), d.GetPlaceholder(4), d.GetPlaceholder(5),
		d.GetPlaceholder(6), d.GetPlaceholder(7), d.GetPlaceholder(8), d.GetPlaceholder(9))

	_, err := retry.Exec(ctx, p.Retry, func() (sql.Result, error) {
		return p.db.ExecContext(ctx, q,
			run.RunID, run.Method, run.URL, run.StatusCode, run.Value, run.Body,
			d.ConvertBoolToStorage(run.Failed), run.Error, d.ConvertTimeToStorage(run.RanAt))
	})
	if err != nil {
		logger.Error("failed to record execution run", "error", err)
		return fmt.Errorf("failed to record execution run %s: %w", run.RunID, err)
	}
	logger.Info("execution run recorded successfully")
	return nil
}

// ListRuns returns recorded runs newest first
func (p *Store) ListRuns(ctx context.Context, th connector.TableNames, limit int) ([]connector.Run, error) {
	if p.db == nil {
		return nil, errors.New("postgresql store is not connected")
	}
	logger := common.GetLogger().WithStore(p.dialect.GetDriverName())
	logger.Debug("listing execution runs", "limit", limit)

	q := fmt.Sprintf("SELECT id, run_id, method, url, status_code, value_json, body, failed, error, ran_at FROM %s ORDER BY id DESC", th.ExecutionRuns)
	var args []interface{}
	if limit > 0 {
		q += " LIMIT " + p.dialect.GetPlaceholder(1)
		args = append(args, limit)
	}

	rows, err := retry.Query(ctx, p.Retry, func() (*sql.Rows, error) {
		return p.db.QueryContext(ctx, q, args...)
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
		var ranAt time.Time
		if err := rows.Scan(&run.ID, &run.RunID, &run.Method, &run.URL, &run.StatusCode, &value, &body, &run.Failed, &run.Error, &ranAt); err != nil {
			logger.Error("failed to scan execution run", "error", err)
			return nil, fmt.Errorf("failed to scan execution run: %w", err)
		}
		if value.Valid {
			run.Value = &value.String
		}
		if body.Valid {
			run.Body = &body.String
		}
		run.RanAt = p.dialect.ConvertTimeFromStorage(ranAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		logger.Error("error iterating execution runs", "error", err)
		return nil, fmt.Errorf("error iterating execution runs: %w", err)
	}

	logger.Debug("execution runs listed successfully", "count", len(runs))
	return runs, nil
}
