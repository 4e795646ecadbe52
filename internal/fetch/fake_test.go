package fetch

import (
	"bytes"
	"errors"
	"io"
	"net/netip"
	"sort"
	"syscall"
	"testing"
	"time"

	"github.com/frankli0324/go-fetch/internal/http"
	"github.com/frankli0324/go-fetch/internal/reactor"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// fakeLoop is a deterministic reactor driven by the test goroutine.
type fakeLoop struct {
	now     time.Duration
	posted  []func()
	timers  []*fakeTimer
	sockets []*fakeSocket
	dialErr error
	stopped bool // Post fails
}

type fakeTimer struct {
	when  time.Duration
	f     func()
	armed bool
}

func (t *fakeTimer) Stop() bool {
	was := t.armed
	t.armed = false
	return was
}

var errStopped = errors.New("loop stopped")

func (l *fakeLoop) Post(f func()) error {
	if l.stopped {
		return errStopped
	}
	l.posted = append(l.posted, f)
	return nil
}

func (l *fakeLoop) AfterFunc(d time.Duration, f func()) reactor.Timer {
	t := &fakeTimer{when: l.now + d, f: f, armed: true}
	l.timers = append(l.timers, t)
	return t
}

func (l *fakeLoop) Dial(addr netip.AddrPort) (reactor.Socket, error) {
	if l.dialErr != nil {
		return nil, l.dialErr
	}
	s := &fakeSocket{addr: addr}
	l.sockets = append(l.sockets, s)
	return s, nil
}

// run executes posted functions until none are left.
func (l *fakeLoop) run() {
	for len(l.posted) > 0 {
		f := l.posted[0]
		l.posted = l.posted[1:]
		f()
	}
}

// elapse moves the clock forward, firing due timers in order.
func (l *fakeLoop) elapse(d time.Duration) {
	l.now += d
	for {
		var due []*fakeTimer
		for _, t := range l.timers {
			if t.armed && t.when <= l.now {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			break
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].when < due[j].when })
		t := due[0]
		t.armed = false
		t.f()
		l.run()
	}
	l.run()
}

func (l *fakeLoop) armed() (n int) {
	for _, t := range l.timers {
		if t.armed {
			n++
		}
	}
	return
}

func (l *fakeLoop) socket(t *testing.T) *fakeSocket {
	t.Helper()
	require.NotEmpty(t, l.sockets, "nothing was dialed")
	return l.sockets[len(l.sockets)-1]
}

type fakeSocket struct {
	addr    netip.AddrPort
	written bytes.Buffer
	// budget is how many bytes a writable event accepts, 0 is unlimited
	budget   int
	left     int
	writeErr error

	in  [][]byte // pending reads, an empty chunk reads as EAGAIN
	eof bool
	err error

	onRead, onWrite func()
	closed          bool
	reads           int
}

func (s *fakeSocket) Read(p []byte) (int, error) {
	s.reads++
	if len(s.in) == 0 {
		switch {
		case s.err != nil:
			return 0, s.err
		case s.eof:
			return 0, io.EOF
		}
		return 0, syscall.EAGAIN
	}
	chunk := s.in[0]
	if len(chunk) == 0 {
		s.in = s.in[1:]
		return 0, syscall.EAGAIN
	}
	n := copy(p, chunk)
	if n < len(chunk) {
		s.in[0] = chunk[n:]
	} else {
		s.in = s.in[1:]
	}
	return n, nil
}

func (s *fakeSocket) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	n := len(p)
	if s.budget > 0 {
		if s.left == 0 {
			return 0, syscall.EAGAIN
		}
		n = min(n, s.left)
		s.left -= n
	}
	s.written.Write(p[:n])
	return n, nil
}

func (s *fakeSocket) OnReadable(f func()) { s.onRead = f }
func (s *fakeSocket) OnWritable(f func()) { s.onWrite = f }

func (s *fakeSocket) Close() error {
	s.closed = true
	return nil
}

// writable delivers one write readiness event.
func (s *fakeSocket) writable(t *testing.T) {
	t.Helper()
	require.NotNil(t, s.onWrite, "no write interest registered")
	f := s.onWrite
	s.onWrite = nil
	s.left = s.budget
	f()
}

// readable queues chunks and delivers one read readiness event.
func (s *fakeSocket) readable(t *testing.T, chunks ...string) {
	t.Helper()
	for _, c := range chunks {
		s.in = append(s.in, []byte(c))
	}
	require.NotNil(t, s.onRead, "no read interest registered")
	f := s.onRead
	s.onRead = nil
	f()
}

func (s *fakeSocket) hangup(t *testing.T, chunks ...string) {
	t.Helper()
	s.eof = true
	s.readable(t, chunks...)
}

type fakeResolver struct {
	loop      *fakeLoop
	hosts     []string
	timeouts  []time.Duration
	pending   func([]netip.Addr, error)
	cancelled int
}

func (r *fakeResolver) Resolve(host string, timeout time.Duration, done func([]netip.Addr, error)) func() {
	r.hosts = append(r.hosts, host)
	r.timeouts = append(r.timeouts, timeout)
	r.pending = done
	return func() {
		r.cancelled++
		r.pending = nil
	}
}

func (r *fakeResolver) answer(t *testing.T, err error, addrs ...string) {
	t.Helper()
	require.NotNil(t, r.pending, "no resolve in flight")
	done := r.pending
	r.pending = nil
	var res []netip.Addr
	for _, a := range addrs {
		res = append(res, netip.MustParseAddr(a))
	}
	r.loop.Post(func() { done(res, err) })
	r.loop.run()
}

type recordingSink struct {
	body   bytes.Buffer
	writes int
	// reject makes the n-th write fail, 0 accepts everything
	reject int
	resp   *http.Response
	err    error
	done   int
}

var errFull = io.ErrShortWrite

func (s *recordingSink) Write(p []byte) error {
	s.writes++
	if s.reject > 0 && s.writes >= s.reject {
		return errFull
	}
	s.body.Write(p)
	return nil
}

func (s *recordingSink) Done(resp *http.Response, err error) {
	s.resp, s.err = resp, err
	s.done++
}

type harness struct {
	f    *Fetcher
	loop *fakeLoop
	res  *fakeResolver
	logs *test.Hook
}

func newHarness(cfg Config) *harness {
	loop := &fakeLoop{}
	res := &fakeResolver{loop: loop}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	cfg.Logger = logger
	return &harness{f: New(loop, res, cfg), loop: loop, res: res, logs: hook}
}

func (h *harness) submit(t *testing.T, req *http.Request, timeout time.Duration) (*Handle, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	hd, err := h.f.Submit(req, sink, timeout)
	require.NoError(t, err)
	h.loop.run()
	return hd, sink
}

// connected submits req and drives it until the request is fully sent.
func (h *harness) connected(t *testing.T, req *http.Request) (*Handle, *recordingSink, *fakeSocket) {
	t.Helper()
	hd, sink := h.submit(t, req, time.Minute)
	h.res.answer(t, nil, "10.0.0.1")
	s := h.loop.socket(t)
	s.writable(t)
	require.Equal(t, ReceivingStatusLine, hd.fx.phase)
	return hd, sink, s
}

func get(url string) *http.Request { return &http.Request{URL: url} }
