package http

import (
	"bytes"
	"errors"
	"strings"

	errs "github.com/frankli0324/go-fetch/internal/errors"
	"golang.org/x/net/http/httpguts"
)

const DefaultUserAgent = "go-fetch"

// PreparedRequest is a validated request together with the exact bytes
// that go on the wire. Raw is never modified after [Request.Prepare].
type PreparedRequest struct {
	*Request

	U      *URL
	Method string
	Header Header // normalized, in wire order
	Raw    []byte
}

// Prepare validates r and serializes it. user defined Host headers are
// replaced by the URL authority, User-Agent values are merged into one
// field, falling back to userAgent (or [DefaultUserAgent]) when none is given.
func (r *Request) Prepare(userAgent string) (*PreparedRequest, error) {
	u, err := ParseURL(r.URL)
	if err != nil {
		return nil, err
	}
	method := r.Method
	if method == "" {
		method = "GET"
	}
	if strings.IndexFunc(method, func(c rune) bool { return !httpguts.IsTokenRune(c) }) != -1 {
		return nil, errs.ErrInvalidRequest.Wrap(errors.New("invalid method " + method))
	}

	headers := make(Header, 0, len(r.Header)+2)
	var agents []string
	for _, f := range r.Header {
		if !httpguts.ValidHeaderFieldName(f.Name) || !httpguts.ValidHeaderFieldValue(f.Value) {
			return nil, errs.ErrInvalidRequest.Wrap(errors.New("invalid header field " + f.Name))
		}
		switch {
		case strings.EqualFold(f.Name, HeaderHost):
		case strings.EqualFold(f.Name, HeaderUserAgent):
			if f.Value != "" {
				agents = append(agents, f.Value)
			}
		case strings.EqualFold(f.Name, "Transfer-Encoding"),
			strings.EqualFold(f.Name, HeaderContentLength) && strings.TrimSpace(f.Value) != "0":
			return nil, errs.ErrInvalidRequest.Wrap(errors.New("request bodies are not supported"))
		default:
			headers = append(headers, f)
		}
	}
	if len(agents) == 0 {
		if userAgent == "" {
			userAgent = DefaultUserAgent
		}
		agents = append(agents, userAgent)
	}
	headers.Add(HeaderUserAgent, strings.Join(agents, " "))
	headers.Add(HeaderHost, u.Authority())

	pr := &PreparedRequest{Request: r, U: u, Method: method, Header: headers}
	pr.Raw = pr.serialize()
	return pr, nil
}

// serialize writes the request line and header part of an http 1.1 request
// into one buffer, e.g.:
//
//	GET / HTTP/1.1\r\n
//	X-Xx-Yy: cccccc\r\n
//	User-Agent: go-fetch\r\n
//	Host: www.google.com\r\n
//	\r\n
func (r *PreparedRequest) serialize() []byte {
	size := len(r.Method) + 1 + len(r.U.Path) + len(" HTTP/1.1\r\n") + 2
	for _, f := range r.Header {
		size += len(f.Name) + len(f.Value) + 4 // ": " and "\r\n"
	}
	var buf bytes.Buffer
	buf.Grow(size)

	buf.WriteString(r.Method)
	buf.WriteByte(' ')
	buf.WriteString(r.U.Path)
	buf.WriteString(" HTTP/1.1\r\n")
	for _, f := range r.Header {
		buf.WriteString(f.Name)
		buf.WriteString(": ")
		buf.WriteString(f.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}
