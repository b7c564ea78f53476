package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/loykin/restclient/internal/errs"
	"github.com/spf13/cast"
)

// Numeric returns v when it denotes a number. A single-element slice is
// unwrapped first. Anything else fails with a KindNumericType error.
func Numeric(v any) (any, error) {
	if s, ok := v.([]any); ok && len(s) == 1 {
		v = s[0]
	}
	if !IsNumber(v) {
		return nil, errs.NotANumber(Render(v))
	}
	return v, nil
}

// IsNumber reports whether v is a number or a string holding one.
func IsNumber(v any) bool {
	switch t := v.(type) {
	case nil, bool, []any, map[string]any:
		return false
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return false
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	return err == nil && !math.IsNaN(f)
}

// Render formats v for error messages: strings verbatim, lists comma-joined,
// objects as JSON.
func Render(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Render(e)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
