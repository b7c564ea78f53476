package restclient

import "github.com/loykin/restclient/internal/errs"

// Error is the error type returned by New and Execute.
type Error = errs.Error

// Kind classifies an Error.
type Kind = errs.Kind

const (
	KindUnknown           = errs.KindUnknown
	KindConfig            = errs.KindConfig
	KindUnsupportedMethod = errs.KindUnsupportedMethod
	KindNumericType       = errs.KindNumericType
	KindFetch             = errs.KindFetch
)

// Sentinels for errors.Is.
var (
	ErrConfig            = errs.ErrConfig
	ErrUnsupportedMethod = errs.ErrUnsupportedMethod
	ErrNumericType       = errs.ErrNumericType
	ErrFetch             = errs.ErrFetch
)

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind { return errs.KindOf(err) }
