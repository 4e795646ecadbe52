//go:build darwin || linux

// Package netpoll is a poll(2) based [reactor.Loop].
package netpoll

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frankli0324/go-fetch/internal/reactor"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

var ErrLoopClosed = errors.New("netpoll: loop closed")

var _ reactor.Loop = (*Loop)(nil)

// Loop runs posted functions, timers and socket callbacks on the single
// goroutine that calls Run. a Loop runs once.
type Loop struct {
	log logrus.FieldLogger

	// mu guards the wakeup pipe as well, so it is never written once
	// closed
	mu      sync.Mutex
	posted  []func()
	wakeR   int
	wakeW   int
	woken   bool
	stopped bool // Run returned or Close was called, Post fails
	closed  bool

	// owned by the loop goroutine
	socks  map[*Socket]struct{}
	timers timerHeap
	fds    []unix.PollFd
	ready  []*Socket
	now    func() time.Time
}

func New(log logrus.FieldLogger) (*Loop, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return nil, err
	}
	for _, fd := range p {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			return nil, err
		}
	}
	return &Loop{
		log:   log.WithField("component", "netpoll"),
		wakeR: p[0], wakeW: p[1],
		socks: map[*Socket]struct{}{},
		now:   time.Now,
	}, nil
}

// Post implements [reactor.Loop]. it is safe for concurrent use. it fails
// with ErrLoopClosed once Run has returned or Close was called. a
// function it accepted runs, unless the loop is closed without running.
func (l *Loop) Post(f func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return ErrLoopClosed
	}
	l.posted = append(l.posted, f)
	l.wakeLocked()
	return nil
}

func (l *Loop) wake() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.stopped {
		l.wakeLocked()
	}
}

func (l *Loop) wakeLocked() {
	if !l.woken {
		l.woken = true
		// a full pipe already guarantees a wakeup
		_, _ = unix.Write(l.wakeW, []byte{0})
	}
}

// AfterFunc implements [reactor.Loop].
func (l *Loop) AfterFunc(d time.Duration, f func()) reactor.Timer {
	t := &timer{l: l, when: l.now().Add(d), f: f}
	heap.Push(&l.timers, t)
	return t
}

// Run drives the loop until ctx is done or polling fails. functions
// posted before it returns are run on the way out.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()
	if stopped {
		return ErrLoopClosed
	}
	stop := context.AfterFunc(ctx, l.wake)
	defer stop()

	err := l.run(ctx)
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.runPosted()
	return err
}

func (l *Loop) run(ctx context.Context) error {
	var drain [64]byte
	for ctx.Err() == nil {
		l.runPosted()
		next := l.timers.fire(l.now())
		if ctx.Err() != nil {
			break
		}
		if l.pending() {
			next = 0
		}

		l.fds = append(l.fds[:0], unix.PollFd{Fd: int32(l.wakeR), Events: unix.POLLIN})
		l.ready = l.ready[:0]
		for s := range l.socks {
			if ev := s.events(); ev != 0 {
				l.fds = append(l.fds, unix.PollFd{Fd: int32(s.fd), Events: ev})
				l.ready = append(l.ready, s)
			}
		}

		n, err := unix.Poll(l.fds, pollTimeout(next))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			l.log.WithError(err).Error("poll failed")
			return err
		}
		if n == 0 {
			continue
		}
		if l.fds[0].Revents != 0 {
			for {
				if n, err := unix.Read(l.wakeR, drain[:]); n <= 0 || err != nil {
					break
				}
			}
			l.mu.Lock()
			l.woken = false
			l.mu.Unlock()
		}
		for i, s := range l.ready {
			// sockets closed by an earlier callback, their fd may already
			// belong to somebody else
			if rev := l.fds[i+1].Revents; rev != 0 && !s.closed {
				s.dispatch(rev)
			}
		}
	}
	return ctx.Err()
}

func (l *Loop) pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.posted) > 0
}

func (l *Loop) runPosted() {
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()
	for _, f := range posted {
		f()
	}
}

// Close releases the wakeup pipe and every socket still open. it must not
// be called while Run is executing, functions still queued are dropped.
func (l *Loop) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed, l.stopped = true, true
	l.posted = nil
	for s := range l.socks {
		s.Close()
	}
	return errors.Join(unix.Close(l.wakeR), unix.Close(l.wakeW))
}

func pollTimeout(d time.Duration) int {
	switch {
	case d < 0:
		return -1
	case d == 0:
		return 0
	}
	ms := (d + time.Millisecond - 1) / time.Millisecond
	if ms > 1<<30 {
		ms = 1 << 30
	}
	return int(ms)
}
