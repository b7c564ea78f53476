package common

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestColorHandler(buf *bytes.Buffer, color bool) *ColorHandler {
	h := NewColorHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	h.SetColorEnabled(color)
	return h
}

func TestColorHandler_Enabled(t *testing.T) {
	h := NewColorHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info must be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error must be enabled at warn level")
	}
}

func TestColorHandler_HandleComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTestColorHandler(&buf, false)).With("component", "fetch")
	logger.Info("request sent", "status", 200)

	out := buf.String()
	if !strings.Contains(out, "[INFO ] [fetch] request sent") {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(out, "status=200") {
		t.Fatalf("expected status attr in %q", out)
	}
	if strings.Contains(out, "component=") {
		t.Fatalf("component must be rendered as prefix only: %q", out)
	}
}

func TestColorHandler_Colorize(t *testing.T) {
	var buf bytes.Buffer
	h := newTestColorHandler(&buf, true)
	if got := h.colorize(Red, "x"); got != Red+"x"+Reset {
		t.Fatalf("unexpected colorized text %q", got)
	}
	h.SetColorEnabled(false)
	if got := h.colorize(Red, "x"); got != "x" {
		t.Fatalf("expected plain text, got %q", got)
	}
}

func TestColorHandler_MasksAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTestColorHandler(&buf, false))
	logger.Warn("auth", "password", "secret", "elapsed", time.Second)

	out := buf.String()
	if strings.Contains(out, "secret") {
		t.Fatalf("password leaked: %q", out)
	}
	if !strings.Contains(out, "elapsed=1s") {
		t.Fatalf("expected duration attr, got %q", out)
	}
}

func TestColorHandler_WithGroupPrefixesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTestColorHandler(&buf, false)).WithGroup("http")
	logger.Debug("done", "code", 201)
	if !strings.Contains(buf.String(), "http.code=201") {
		t.Fatalf("expected grouped key, got %q", buf.String())
	}
}
