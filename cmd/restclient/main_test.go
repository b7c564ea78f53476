package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loykin/restclient"
	"github.com/spf13/viper"
)

func upstream(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func configFor(url, method string) string {
	return `
plugin:
  method: ` + method + `
  url: ` + url + `
  jpath: $.power
  output: result
mapping:
  result: wattage
logging:
  level: error
store:
  table_prefix: cli
`
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	defer restclient.SetDefaultLogger(restclient.NewLogger(restclient.LogLevelInfo))
	cmd := newRootCmd(viper.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRun_JSONInputsFile(t *testing.T) {
	up := upstream(t, `{"power":250}`)
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", configFor(up.URL, "GET"))
	inputs := writeFile(t, dir, "inputs.json", `[{"timestamp":"2023-07-06T00:00","duration":1}]`)

	out, err := execute(t, "", "run", "--config", cfg, "--inputs", inputs)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 1 || got[0]["wattage"] != float64(250) || got[0]["timestamp"] != "2023-07-06T00:00" {
		t.Fatalf("unexpected output: %v", got)
	}

	hist, err := execute(t, "", "history", "--config", cfg, "--limit", "5")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(hist, "GET") || !strings.Contains(hist, "250") {
		t.Fatalf("history missing run:\n%s", hist)
	}
}

func TestRun_YAMLStdinAndOutput(t *testing.T) {
	up := upstream(t, `{"power":7}`)
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", configFor(up.URL, "get"))

	out, err := execute(t, "- timestamp: a\n- timestamp: b\n", "run", "--config", cfg, "--no-store", "-o", "yaml")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Count(out, "wattage: 7") != 2 {
		t.Fatalf("unexpected yaml output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "restclient.db")); !os.IsNotExist(err) {
		t.Fatalf("store must not be created with --no-store, stat err=%v", err)
	}
}

func TestRun_ExecutionErrorSurfaces(t *testing.T) {
	up := upstream(t, `{"power":"Jack"}`)
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", configFor(up.URL, "GET"))

	_, err := execute(t, "[]", "run", "--config", cfg, "--no-store")
	if !errors.Is(err, restclient.ErrNumericType) {
		t.Fatalf("expected numeric error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", configFor("https://example.invalid", "GET"))
	out, err := execute(t, "", "validate", "--config", good)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "-> wattage") {
		t.Fatalf("unexpected output %q", out)
	}

	bad := writeFile(t, dir, "bad.yaml", configFor("https://example.invalid", "DELETE"))
	if _, err := execute(t, "", "validate", "--config", bad); !errors.Is(err, restclient.ErrUnsupportedMethod) {
		t.Fatalf("expected unsupported method, got %v", err)
	}

	empty := writeFile(t, dir, "empty.yaml", "logging:\n  level: error\n")
	if _, err := execute(t, "", "validate", "--config", empty); !errors.Is(err, restclient.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestHistory_StoreDisabled(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", configFor("https://example.invalid", "GET"))
	if _, err := execute(t, "", "history", "--config", cfg, "--no-store"); err == nil {
		t.Fatal("expected error when store is disabled")
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := execute(t, "", "validate", "--config", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config")
	}
}

type recordingExit struct {
	code int
}

func (r *recordingExit) Exit(code int) { r.code = code }
func (r *recordingExit) LogFatalError(err error, msg string, keyvals ...any) {
	(&DefaultExitHandler{}).logOnly(err, msg, keyvals...)
	r.Exit(1)
}

func TestExitHandler_Replaceable(t *testing.T) {
	rec := &recordingExit{}
	prev := exitHandler
	exitHandler = rec
	defer func() { exitHandler = prev }()

	exitHandler.LogFatalError(errors.New("boom"), "failed")
	if rec.code != 1 {
		t.Fatalf("expected exit code 1, got %d", rec.code)
	}
}
