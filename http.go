package fetch

import (
	errs "github.com/frankli0324/go-fetch/internal/errors"
	"github.com/frankli0324/go-fetch/internal/http"
)

type Header = http.Header
type Field = http.Field
type Request = http.Request
type Response = http.Response
type Status = http.Status
type URL = http.URL

var ParseURL = http.ParseURL

const (
	DefaultUserAgent             = http.DefaultUserAgent
	HeaderXOriginalContentLength = http.HeaderXOriginalContentLength
)

// failure kinds, match them with [errors.Is]
var (
	ErrUnsupportedScheme   = errs.ErrUnsupportedScheme
	ErrInvalidURL          = errs.ErrInvalidURL
	ErrInvalidRequest      = errs.ErrInvalidRequest
	ErrResolutionFailed    = errs.ErrResolutionFailed
	ErrConnection          = errs.ErrConnection
	ErrMalformedStatusLine = errs.ErrMalformedStatusLine
	ErrMalformedHeaders    = errs.ErrMalformedHeaders
	ErrSinkRejected        = errs.ErrSinkRejected
	ErrTimeout             = errs.ErrTimeout
	ErrCancelled           = errs.ErrCancelled
	ErrTooManyFetches      = errs.ErrTooManyFetches
	ErrShutdown            = errs.ErrShutdown
)
