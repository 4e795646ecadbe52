package fetch

import (
	"net/netip"
	"time"

	"github.com/frankli0324/go-fetch/internal/http"
)

// Sink receives the body of one fetch as it arrives, followed by exactly
// one call to Done. both run on the loop goroutine.
type Sink interface {
	// Write gets every non-empty body slice. p is only valid during the
	// call. returning an error aborts the fetch with ErrSinkRejected.
	Write(p []byte) error
	// Done reports completion, err is nil on success. resp is never nil.
	Done(resp *http.Response, err error)
}

// Resolver looks up host names asynchronously. done must run on the loop
// goroutine, exactly once unless cancel was called first.
type Resolver interface {
	Resolve(host string, timeout time.Duration, done func([]netip.Addr, error)) (cancel func())
}

// SinkFuncs adapts a pair of functions to [Sink], nil fields are no-ops.
type SinkFuncs struct {
	OnWrite func(p []byte) error
	OnDone  func(resp *http.Response, err error)
}

func (s SinkFuncs) Write(p []byte) error {
	if s.OnWrite == nil {
		return nil
	}
	return s.OnWrite(p)
}

func (s SinkFuncs) Done(resp *http.Response, err error) {
	if s.OnDone != nil {
		s.OnDone(resp, err)
	}
}
