package status

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/loykin/restclient"
)

// Status display constants
const (
	defaultHistoryLimit = 10 // Default number of history entries to show
	maxResultWidth      = 80

	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

// HistoryItem is a single recorded plugin execution.
// Value holds the JSON of the merged value and is nil for failed runs.
type HistoryItem struct {
	ID         int64
	RunID      string
	Method     string
	URL        string
	StatusCode int
	Failed     bool
	Error      string
	RanAt      time.Time
	Value      *string
}

// Result is the one-line outcome of the run.
func (h HistoryItem) Result() string {
	switch {
	case h.Failed:
		return "error: " + h.Error
	case h.Value != nil:
		return *h.Value
	default:
		return ""
	}
}

// Info aggregates the listed history, newest first.
type Info struct {
	Total   int
	Failed  int
	History []HistoryItem
}

// FromStore collects up to limit runs from an opened store.
// limit <= 0 lists the default number of runs.
func FromStore(ctx context.Context, st *restclient.Store, limit int) (Info, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return Info{}, err
	}
	return FromRuns(runs), nil
}

// FromRuns converts stored runs into an Info.
func FromRuns(runs []restclient.Run) Info {
	info := Info{Total: len(runs), History: make([]HistoryItem, 0, len(runs))}
	for _, r := range runs {
		if r.Failed {
			info.Failed++
		}
		info.History = append(info.History, HistoryItem{
			ID:         r.ID,
			RunID:      r.RunID,
			Method:     r.Method,
			URL:        r.URL,
			StatusCode: r.StatusCode,
			Failed:     r.Failed,
			Error:      r.Error,
			RanAt:      r.RanAt,
			Value:      r.Value,
		})
	}
	return info
}

// FormatHuman returns a human-friendly multiline string for CLI output.
func (i Info) FormatHuman() string {
	return i.FormatColorized(false)
}

// FormatColorized is FormatHuman with failed and succeeded markers colored.
func (i Info) FormatColorized(color bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "runs: %d failed: %d\n", i.Total, i.Failed)
	if len(i.History) == 0 {
		b.WriteString("history: \n")
		return b.String()
	}
	b.WriteString("history:\n")
	for _, h := range i.History {
		mark := "ok"
		if h.Failed {
			mark = "failed"
		}
		if color {
			c := colorGreen
			if h.Failed {
				c = colorRed
			}
			mark = c + mark + colorReset
		}
		fmt.Fprintf(&b, "#%d %s %s %s code=%d %s at=%s result=%s\n",
			h.ID, mark, h.Method, h.URL, h.StatusCode, h.RunID,
			h.RanAt.UTC().Format(time.RFC3339), truncate(h.Result(), maxResultWidth))
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
