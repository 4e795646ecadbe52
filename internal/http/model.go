package http

import (
	"strconv"
	"time"
)

const (
	HeaderHost                   = "Host"
	HeaderUserAgent              = "User-Agent"
	HeaderContentLength          = "Content-Length"
	HeaderConnection             = "Connection"
	HeaderXOriginalContentLength = "X-Original-Content-Length"
)

type Request struct {
	Method string // defaults to GET
	URL    string
	Header Header
}

// Status is the parsed status line of a response.
type Status struct {
	Major, Minor int
	Code         int
	Reason       string
}

func (s Status) Proto() string {
	return "HTTP/" + strconv.Itoa(s.Major) + "." + strconv.Itoa(s.Minor)
}

func (s Status) String() string {
	if s.Code == 0 {
		return ""
	}
	str := s.Proto() + " " + strconv.Itoa(s.Code)
	if s.Reason != "" {
		str += " " + s.Reason
	}
	return str
}

// Response is handed to the sink on completion. it is never nil, though
// Status and Header stay empty when the fetch failed before they were
// received. the body is not part of it, the sink already got it.
type Response struct {
	URL    string
	Status Status
	Header Header
	// Extra carries metadata attached by the fetcher rather than the
	// peer, e.g. X-Original-Content-Length.
	Extra Header

	BytesReceived int64
	Start, End    time.Time
}

// OriginalContentLength returns the value recorded in Extra, or -1.
func (r *Response) OriginalContentLength() int64 {
	v := r.Extra.Get(HeaderXOriginalContentLength)
	if v == "" {
		return -1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return -1
	}
	return n
}
