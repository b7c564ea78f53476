package sqlite

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/loykin/restclient/internal/store/connector"
)

var th = connector.TableNames{ExecutionRuns: "execution_runs"}

func TestStore_Load(t *testing.T) {
	s := NewStore()
	if err := s.Load(map[string]interface{}{"path": "/tmp/x.db"}); err != nil {
		t.Fatal(err)
	}
	if s.DSN != "file:/tmp/x.db?_busy_timeout=5000&_fk=1" {
		t.Errorf("unexpected dsn %q", s.DSN)
	}
	s = NewStore()
	_ = s.Load(map[string]interface{}{"dsn": "file::memory:", "path": "/ignored"})
	if s.DSN != "file::memory:" {
		t.Errorf("dsn must win over path, got %q", s.DSN)
	}
}

func TestStore_NotConnected(t *testing.T) {
	s := NewStore()
	if err := s.Ensure(context.Background(), th); err == nil {
		t.Error("expected error from Ensure without connection")
	}
	if err := s.RecordRun(context.Background(), th, connector.Run{}); err == nil {
		t.Error("expected error from RecordRun without connection")
	}
	if _, err := s.ListRuns(context.Background(), th, 0); err == nil {
		t.Error("expected error from ListRuns without connection")
	}
}

func TestStore_Ensure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS execution_runs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS execution_runs_run_id_idx").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewStoreWithDB(db).Ensure(context.Background(), th); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStore_RecordRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	ranAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	value := "100"
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO execution_runs(run_id, method, url, status_code, value_json, body, failed, error, ran_at) VALUES(?,?,?,?,?,?,?,?,?)")).
		WithArgs("run-1", "GET", "https://example.com", 200, &value, nil, 0, "", ranAt.Format(time.RFC3339Nano)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := connector.Run{RunID: "run-1", Method: "GET", URL: "https://example.com", StatusCode: 200, Value: &value, RanAt: ranAt}
	if err := NewStoreWithDB(db).RecordRun(context.Background(), th, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStore_ListRunsWithLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	cols := []string{"id", "run_id", "method", "url", "status_code", "value_json", "body", "failed", "error", "ran_at"}
	rows := sqlmock.NewRows(cols).
		AddRow(2, "b", "POST", "https://x", 201, nil, "ok", 0, "", "2024-01-02T03:04:05Z").
		AddRow(1, "a", "GET", "https://x", 0, nil, nil, 1, "boom", "2024-01-01T00:00:00Z")
	mock.ExpectQuery(regexp.QuoteMeta("FROM execution_runs ORDER BY id DESC LIMIT ?")).WithArgs(5).WillReturnRows(rows)

	runs, err := NewStoreWithDB(db).ListRuns(context.Background(), th, 5)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "b" || runs[0].Body == nil || *runs[0].Body != "ok" || runs[0].Failed {
		t.Errorf("unexpected first run: %+v", runs[0])
	}
	if !runs[1].Failed || runs[1].Error != "boom" || runs[1].Value != nil {
		t.Errorf("unexpected second run: %+v", runs[1])
	}
	if runs[0].RanAt.Year() != 2024 {
		t.Errorf("ran_at not parsed: %v", runs[0].RanAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStore_FileRoundTrip(t *testing.T) {
	s := NewStore()
	_ = s.Load(map[string]interface{}{"path": filepath.Join(t.TempDir(), "history.db")})
	if _, err := s.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	if err := s.Ensure(ctx, th); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	// idempotent
	if err := s.Ensure(ctx, th); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}

	value := `{"status":201}`
	for i, id := range []string{"first", "second", "third"} {
		run := connector.Run{RunID: id, Method: "POST", URL: "https://example.com", StatusCode: 201 + i, Value: &value, RanAt: time.Now()}
		if err := s.RecordRun(ctx, th, run); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, th, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "third" || runs[1].RunID != "second" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[0].Value == nil || *runs[0].Value != value {
		t.Errorf("value not stored: %+v", runs[0].Value)
	}

	all, err := s.ListRuns(ctx, th, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d (%v)", len(all), err)
	}
}
