package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/loykin/restclient/internal/store/sqlite"
)

func TestTableNamesFromPrefix(t *testing.T) {
	if got := TableNamesFromPrefix("").ExecutionRuns; got != "execution_runs" {
		t.Errorf("default table = %s", got)
	}
	if got := TableNamesFromPrefix(" site1 ").ExecutionRuns; got != "site1_execution_runs" {
		t.Errorf("prefixed table = %s", got)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpen_SqliteRecordAndList(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(ctx, Config{
		Driver:       "SQLite",
		TableNames:   TableNamesFromPrefix("test"),
		DriverConfig: &sqlite.Config{Path: path},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()

	if s.Driver() != DriverSqlite || s.TableNames().ExecutionRuns != "test_execution_runs" {
		t.Fatalf("unexpected store: %s %+v", s.Driver(), s.TableNames())
	}

	if err := s.RecordRun(ctx, Run{RunID: "one", Method: "GET", URL: "https://example.com", StatusCode: 200}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "one" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[0].RanAt.IsZero() {
		t.Error("expected ran_at to be stamped")
	}
}
