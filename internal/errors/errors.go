// package errors contains the failure kinds a fetch can end with. every
// kind is a comparable value, wrapping a cause keeps the kind intact so
// callers match with [errors.Is] against the exported values.
package errors

import stderrors "errors"

type FetchError struct {
	kind, msg string
	error
}

func (e FetchError) Error() string {
	msg := e.msg
	if e.error != nil {
		msg += ": " + e.error.Error()
	}
	return msg
}

// Wrap attaches cause to a copy of e. a nil cause returns e unchanged.
func (e FetchError) Wrap(cause error) FetchError {
	if cause == nil {
		return e
	}
	return FetchError{e.kind, e.msg, cause}
}

func (e FetchError) Unwrap() error {
	return e.error
}

func (e FetchError) Is(err error) bool {
	if err, ok := err.(FetchError); ok {
		return e.kind == err.kind
	}
	return false
}

// Timeout satisfies the net.Error style interface so that generic
// timeout classifiers recognise [ErrTimeout].
func (e FetchError) Timeout() bool {
	return e.kind == ErrTimeout.kind
}

func reg(kind, msg string) FetchError { return FetchError{kind, msg, nil} }

// Kind returns a short label for the outermost kind in err's chain, used
// for metrics and log fields. nil is "ok", foreign errors are "other".
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	var fe FetchError
	if stderrors.As(err, &fe) {
		return fe.kind
	}
	return "other"
}

var (
	ErrUnsupportedScheme   = reg("unsupported_scheme", "unsupported scheme")
	ErrInvalidURL          = reg("invalid_url", "invalid url")
	ErrInvalidRequest      = reg("invalid_request", "invalid request")
	ErrResolutionFailed    = reg("resolution_failed", "name resolution failed")
	ErrConnection          = reg("connection", "connection error")
	ErrMalformedStatusLine = reg("malformed_status_line", "malformed status line")
	ErrMalformedHeaders    = reg("malformed_headers", "malformed response headers")
	ErrSinkRejected        = reg("sink_rejected", "sink rejected body")
	ErrTimeout             = reg("timeout", "fetch timed out")
	ErrCancelled           = reg("cancelled", "fetch cancelled")
	ErrTooManyFetches      = reg("too_many_fetches", "too many active fetches")
	ErrShutdown            = reg("shutdown", "fetcher is shut down")
)

// ErrLifecycleViolation is raised (as a panic value) when a fetch is
// completed more than once. it is a bug in the state machine, never a
// network condition.
var ErrLifecycleViolation = reg("lifecycle_violation", "BUG: fetch completed more than once")
