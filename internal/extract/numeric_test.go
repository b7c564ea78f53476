package extract

import (
	"errors"
	"testing"

	"github.com/loykin/restclient/internal/errs"
)

func TestNumeric_Accepts(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"int", 100, 100},
		{"float", 2.5, 2.5},
		{"numeric string", "42", "42"},
		{"padded numeric string", " 42 ", " 42 "},
		{"single element list", []any{9}, 9},
		{"uint64", uint64(3), uint64(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Numeric(tt.in)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %#v want %#v", got, tt.want)
			}
		})
	}
}

func TestNumeric_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
		msg  string
	}{
		{"string", "Jack", "Only numerical output is supported. 'Jack' is not a number."},
		{"wrapped string", []any{"Jack"}, "Only numerical output is supported. 'Jack' is not a number."},
		{"many", []any{1, 2}, "Only numerical output is supported. '1,2' is not a number."},
		{"none", []any{}, "Only numerical output is supported. '' is not a number."},
		{"object", map[string]any{"a": 1}, `Only numerical output is supported. '{"a":1}' is not a number.`},
		{"null", nil, "Only numerical output is supported. 'null' is not a number."},
		{"bool", true, "Only numerical output is supported. 'true' is not a number."},
		{"nan", "NaN", "Only numerical output is supported. 'NaN' is not a number."},
		{"blank", "  ", "Only numerical output is supported. '  ' is not a number."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Numeric(tt.in)
			if !errors.Is(err, errs.ErrNumericType) {
				t.Fatalf("expected numeric type error, got %v", err)
			}
			if err.Error() != tt.msg {
				t.Fatalf("got %q want %q", err.Error(), tt.msg)
			}
		})
	}
}
