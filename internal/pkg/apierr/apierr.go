package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of error categories the API surfaces.
type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindNotFound            Kind = "not_found"
	KindInvalidState        Kind = "invalid_state"
	KindInvalidID           Kind = "invalid_id"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindBusy                Kind = "busy"
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the kind to an HTTP status.
func (e *Error) Status() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindInvalidID:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindBusy:
		return http.StatusConflict
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func Validation(err error) *Error          { return New(KindValidation, err) }
func NotFound(err error) *Error            { return New(KindNotFound, err) }
func InvalidState(err error) *Error        { return New(KindInvalidState, err) }
func InvalidID(err error) *Error           { return New(KindInvalidID, err) }
func UpstreamUnavailable(err error) *Error { return New(KindUpstreamUnavailable, err) }
func Busy(err error) *Error                { return New(KindBusy, err) }

// KindOf extracts the kind from an error chain, or "" if none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// StatusOf maps any error to an HTTP status, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status()
	}
	return http.StatusInternalServerError
}

// CodeOf returns the wire code for an error, defaulting to internal_error.
func CodeOf(err error) string {
	if k := KindOf(err); k != "" {
		return string(k)
	}
	return "internal_error"
}
