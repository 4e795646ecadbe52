package transport

import (
	"bytes"
	"errors"
)

type State int

const (
	Pending State = iota
	Completed
)

// Parser consumes a prefix of b. once Completed is returned, rest holds
// the bytes that belong to whatever follows the parsed element.
type Parser interface {
	Parse(b []byte) (s State, rest []byte, err error)
}

const (
	DefaultMaxStatusLine = 8 << 10
	DefaultMaxHeaderSize = 64 << 10
)

var errTooLong = errors.New("line too long")

// lines buffers a partial line across calls and enforces a total size.
type lines struct {
	buf []byte
	n   int
	max int
}

// next returns the next complete line of b with the terminator removed,
// "\r\n" and a bare "\n" are both accepted. ok is false once b is drained,
// the partial tail is then kept for the following call.
func (l *lines) next(b []byte) (line, rest []byte, ok bool, err error) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		if l.n += len(b); l.n > l.max {
			return nil, nil, false, errTooLong
		}
		l.buf = append(l.buf, b...)
		return nil, nil, false, nil
	}
	if l.n += i + 1; l.n > l.max {
		return nil, nil, false, errTooLong
	}
	line, rest = b[:i], b[i+1:]
	if len(l.buf) > 0 {
		line = append(l.buf, line...)
		l.buf = l.buf[:0]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, rest, true, nil
}
