package transport

import (
	"bytes"
	"errors"
	"strconv"

	errs "github.com/frankli0324/go-fetch/internal/errors"
	"github.com/frankli0324/go-fetch/internal/http"
)

// StatusLineParser parses "HTTP/x.y ddd reason" into Status.
type StatusLineParser struct {
	Status *http.Status
	l      lines
}

func NewStatusLineParser(s *http.Status, max int) *StatusLineParser {
	if max <= 0 {
		max = DefaultMaxStatusLine
	}
	return &StatusLineParser{Status: s, l: lines{max: max}}
}

func (p *StatusLineParser) Parse(b []byte) (State, []byte, error) {
	line, rest, ok, err := p.l.next(b)
	if err != nil {
		return Pending, nil, errs.ErrMalformedStatusLine.Wrap(err)
	}
	if !ok {
		return Pending, nil, nil
	}
	if err := parseStatusLine(line, p.Status); err != nil {
		return Pending, nil, errs.ErrMalformedStatusLine.Wrap(err)
	}
	return Completed, rest, nil
}

func parseStatusLine(line []byte, s *http.Status) error {
	proto, status, ok := bytes.Cut(line, []byte{' '})
	if !ok {
		return errors.New("malformed HTTP response " + strconv.Quote(string(line)))
	}
	major, minor, ok := parseVersion(proto)
	if !ok {
		return errors.New("malformed HTTP version " + strconv.Quote(string(proto)))
	}
	status = bytes.TrimLeft(status, " ")
	code, reason, _ := bytes.Cut(status, []byte{' '})
	if len(code) != 3 {
		return errors.New("malformed HTTP status code " + strconv.Quote(string(code)))
	}
	n := 0
	for _, c := range code {
		if c < '0' || c > '9' {
			return errors.New("malformed HTTP status code " + strconv.Quote(string(code)))
		}
		n = n*10 + int(c-'0')
	}
	s.Major, s.Minor, s.Code = major, minor, n
	s.Reason = string(bytes.TrimSpace(reason))
	return nil
}

// parseVersion accepts "HTTP/d.d". HTTP/1.0 peers are served the same
// way, the body simply runs until close when no length is given.
func parseVersion(v []byte) (major, minor int, ok bool) {
	if len(v) != len("HTTP/1.1") || !bytes.HasPrefix(v, []byte("HTTP/")) || v[6] != '.' {
		return 0, 0, false
	}
	if v[5] < '0' || v[5] > '9' || v[7] < '0' || v[7] > '9' {
		return 0, 0, false
	}
	return int(v[5] - '0'), int(v[7] - '0'), true
}
