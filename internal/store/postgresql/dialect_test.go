package postgresql

import (
	"strings"
	"testing"
	"time"
)

func TestDialect_GetPlaceholder(t *testing.T) {
	d := NewDialect()
	for i, want := range []string{"$1", "$2", "$10"} {
		idx := []int{1, 2, 10}[i]
		if got := d.GetPlaceholder(idx); got != want {
			t.Errorf("GetPlaceholder(%d) = %s, want %s", idx, got, want)
		}
	}
}

func TestDialect_Conversions(t *testing.T) {
	d := NewDialect()
	if d.ConvertBoolToStorage(true) != true {
		t.Error("expected native bool")
	}
	local := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 7200))
	stored, ok := d.ConvertTimeToStorage(local).(time.Time)
	if !ok || stored.Location() != time.UTC || !stored.Equal(local) {
		t.Errorf("unexpected stored time %v", stored)
	}
	if got := d.ConvertTimeFromStorage(&local); got.Location() != time.UTC || !got.Equal(local) {
		t.Errorf("unexpected time from pointer %v", got)
	}
	var nilTime *time.Time
	if got := d.ConvertTimeFromStorage(nilTime); !got.IsZero() {
		t.Errorf("expected zero time, got %v", got)
	}
}

func TestDialect_GetEnsureStatements(t *testing.T) {
	stmts := NewDialect().GetEnsureStatements("execution_runs")
	if len(stmts) != 2 || !strings.Contains(stmts[0], "BIGSERIAL") || !strings.Contains(stmts[0], "TIMESTAMPTZ") {
		t.Fatalf("unexpected statements: %v", stmts)
	}
}

func TestConfig_ToMap(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit dsn", Config{DSN: " postgres://a@b/c ", Host: "ignored"}, "postgres://a@b/c"},
		{"components", Config{Host: "db", User: "u", Password: "p@ss", DBName: "hist"}, "postgres://u:p%40ss@db:5432/hist?sslmode=disable"},
		{"custom port and ssl", Config{Host: "db", Port: 6543, User: "u", Password: "p", DBName: "h", SSLMode: "require"}, "postgres://u:p@db:6543/h?sslmode=require"},
		{"nothing", Config{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ToMap()["dsn"]; got != tt.want {
				t.Errorf("dsn = %v, want %v", got, tt.want)
			}
		})
	}
}
