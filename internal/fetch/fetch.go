package fetch

import (
	"time"

	errs "github.com/frankli0324/go-fetch/internal/errors"
	"github.com/frankli0324/go-fetch/internal/http"
	"github.com/frankli0324/go-fetch/internal/reactor"
	"github.com/frankli0324/go-fetch/internal/transport"
	"github.com/sirupsen/logrus"
)

// Fetch is one outstanding request/response exchange. all of its state
// is owned by the loop goroutine.
type Fetch struct {
	id      uint64
	f       *Fetcher
	req     *http.PreparedRequest
	log     logrus.FieldLogger
	timeout time.Duration

	phase Phase
	sink  Sink // nil once completed
	resp  *http.Response
	err   error
	done  chan struct{}

	// owned resources, all released by release()
	timer         reactor.Timer
	idle          reactor.Timer
	cancelResolve func()
	sock          reactor.Socket
	out           []byte // request bytes still to send
	buf           []byte // scratch read buffer

	status    *transport.StatusLineParser
	header    *transport.HeaderParser
	remaining int64 // body bytes still expected, -1 until close
}

func newFetch(f *Fetcher, id uint64, req *http.PreparedRequest, sink Sink, timeout time.Duration) *Fetch {
	fx := &Fetch{
		id:        id,
		f:         f,
		req:       req,
		timeout:   timeout,
		sink:      sink,
		resp:      &http.Response{URL: req.U.String()},
		done:      make(chan struct{}),
		out:       req.Raw,
		remaining: -1,
	}
	fx.log = f.log.WithFields(logrus.Fields{"fetch": id, "url": fx.resp.URL})
	return fx
}

func (fx *Fetch) ID() uint64   { return fx.id }
func (fx *Fetch) Phase() Phase { return fx.phase }

// start runs on the loop once the fetch was submitted.
func (fx *Fetch) start() {
	fx.resp.Start = time.Now()
	if fx.f.closed.Load() {
		fx.terminate(errs.ErrShutdown)
		return
	}
	fx.f.active[fx.id] = fx
	fx.timer = fx.f.loop.AfterFunc(fx.timeout, fx.onTimeout)
	fx.advance(ResolvingName)

	timeout := fx.f.cfg.ResolverTimeout
	if timeout <= 0 || timeout > fx.timeout {
		timeout = fx.timeout
	}
	fx.cancelResolve = fx.f.resolver.Resolve(fx.req.U.Host, timeout, fx.onResolved)
}
