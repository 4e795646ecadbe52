package transport

import (
	"bytes"
	"errors"
	"net/textproto"
	"strconv"

	errs "github.com/frankli0324/go-fetch/internal/errors"
	"github.com/frankli0324/go-fetch/internal/http"
	"golang.org/x/net/http/httpguts"
)

// HeaderParser appends fields to Header until the empty line ending the
// header section.
type HeaderParser struct {
	Header *http.Header
	l      lines
}

func NewHeaderParser(h *http.Header, max int) *HeaderParser {
	if max <= 0 {
		max = DefaultMaxHeaderSize
	}
	return &HeaderParser{Header: h, l: lines{max: max}}
}

func (p *HeaderParser) Parse(b []byte) (State, []byte, error) {
	for {
		line, rest, ok, err := p.l.next(b)
		if err != nil {
			return Pending, nil, errs.ErrMalformedHeaders.Wrap(err)
		}
		if !ok {
			return Pending, nil, nil
		}
		if len(line) == 0 {
			return Completed, rest, nil
		}
		if err := p.field(line); err != nil {
			return Pending, nil, errs.ErrMalformedHeaders.Wrap(err)
		}
		b = rest
	}
}

func (p *HeaderParser) field(line []byte) error {
	h := p.Header
	if line[0] == ' ' || line[0] == '\t' {
		// obs-fold, RFC9112 section 5.2: replace with a single SP
		if len(*h) == 0 {
			return errors.New("continuation line before first field")
		}
		last := &(*h)[len(*h)-1]
		if v := textproto.TrimString(string(line)); v != "" {
			if last.Value == "" {
				last.Value = v
			} else {
				last.Value += " " + v
			}
		}
		return nil
	}
	name, value, ok := bytes.Cut(line, []byte{':'})
	if !ok {
		return errors.New("malformed MIME header line: " + strconv.Quote(string(line)))
	}
	if !httpguts.ValidHeaderFieldName(string(name)) {
		return errors.New("invalid header field name " + strconv.Quote(string(name)))
	}
	v := textproto.TrimString(string(value))
	if !httpguts.ValidHeaderFieldValue(v) {
		return errors.New("invalid header field value for " + string(name))
	}
	h.Add(string(name), v)
	return nil
}
