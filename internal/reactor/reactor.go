// package reactor describes the single threaded event loop a fetch is
// driven by. nothing here blocks: readiness is delivered through one-shot
// callbacks which all run on the loop goroutine.
package reactor

import (
	"net/netip"
	"time"
)

// Loop is a single threaded event loop. only Post may be called from
// other goroutines, everything else must run on the loop itself.
type Loop interface {
	// Post schedules f to run on the loop goroutine. it fails, and f never
	// runs, once the loop has stopped.
	Post(f func()) error
	// AfterFunc arms a one-shot timer, f runs on the loop goroutine.
	AfterFunc(d time.Duration, f func()) Timer
	// Dial starts a non-blocking TCP connect to addr. the returned socket
	// becomes writable once the connection is established or has failed,
	// the outcome is reported by the first Write.
	Dial(addr netip.AddrPort) (Socket, error)
}

type Timer interface {
	// Stop disarms the timer, it reports whether f was prevented from running.
	Stop() bool
}

// Socket is a non-blocking stream. Read and Write return syscall.EAGAIN
// when they would block, Read returns io.EOF on orderly shutdown.
type Socket interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	// OnReadable and OnWritable register interest in one readiness event.
	// passing nil withdraws the interest.
	OnReadable(f func())
	OnWritable(f func())
	Close() error
}
