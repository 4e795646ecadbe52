package transport

import (
	"fmt"
	"net/textproto"
	"strconv"

	errs "github.com/frankli0324/go-fetch/internal/errors"
	"github.com/frankli0324/go-fetch/internal/http"
)

// ContentLength returns the body length announced by h, or -1 when the
// body is delimited by connection close. a Transfer-Encoding overrides any
// Content-Length (RFC9112 section 6.3), the body is then passed through
// undecoded until close.
func ContentLength(h http.Header) (int64, error) {
	if h.Has("Transfer-Encoding") {
		return -1, nil
	}
	contentLens := h.Values(http.HeaderContentLength)
	if len(contentLens) == 0 {
		return -1, nil
	}

	// Hardening against HTTP response smuggling, taken from standard library
	first := textproto.TrimString(contentLens[0])
	for _, ct := range contentLens[1:] {
		if first != textproto.TrimString(ct) {
			return -1, errs.ErrMalformedHeaders.Wrap(fmt.Errorf("message cannot contain multiple Content-Length headers; got %q", contentLens))
		}
	}
	n, err := strconv.ParseUint(first, 10, 63)
	if err != nil {
		return -1, errs.ErrMalformedHeaders.Wrap(fmt.Errorf("bad Content-Length %q", first))
	}
	return int64(n), nil
}

// BodyAllowed reports whether a response to method with the given status
// code can carry a body at all.
func BodyAllowed(method string, code int) bool {
	switch {
	case method == "HEAD":
		return false
	case code >= 100 && code < 200, code == 204, code == 304:
		return false
	}
	return true
}
