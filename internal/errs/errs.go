package errs

import (
	"errors"
	"fmt"
)

// Kind classifies the failures surfaced by the plugin.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindUnsupportedMethod
	KindNumericType
	KindFetch
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindUnsupportedMethod:
		return "unsupported_method"
	case KindNumericType:
		return "numeric_type"
	case KindFetch:
		return "fetch"
	default:
		return "unknown"
	}
}

// Error is the single error type returned to plugin callers.
// Msg is the user facing message; Err optionally carries the cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String() + " error"
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind when target carries no message,
// so errors.Is(err, ErrConfig) works for every configuration failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Msg == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Msg == e.Msg
}

// Sentinels for errors.Is.
var (
	ErrConfig            = &Error{Kind: KindConfig}
	ErrUnsupportedMethod = &Error{Kind: KindUnsupportedMethod}
	ErrNumericType       = &Error{Kind: KindNumericType}
	ErrFetch             = &Error{Kind: KindFetch}
)

// Config returns a configuration error with the given message.
func Config(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedMethod returns the error raised for a method outside GET/POST/PUT.
// The method is echoed exactly as configured.
func UnsupportedMethod(method string) *Error {
	return &Error{Kind: KindUnsupportedMethod, Msg: "Unsupported method: " + method}
}

// NotANumber returns the numeric validation error for the rendered value.
func NotANumber(rendered string) *Error {
	return &Error{
		Kind: KindNumericType,
		Msg:  fmt.Sprintf("Only numerical output is supported. '%s' is not a number.", rendered),
	}
}

// Fetch wraps a transport failure for url.
func Fetch(url string, cause error) *Error {
	detail := "Unknown error occurred."
	if cause != nil && cause.Error() != "" {
		detail = cause.Error()
	}
	return &Error{
		Kind: KindFetch,
		Msg:  fmt.Sprintf("Failed fetching the file: %s. %s", url, detail),
		Err:  cause,
	}
}

// KindOf reports the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Passthrough reports whether err must reach the caller without being
// wrapped into a fetch error.
func Passthrough(err error) bool {
	switch KindOf(err) {
	case KindConfig, KindUnsupportedMethod, KindNumericType, KindFetch:
		return true
	default:
		return false
	}
}
