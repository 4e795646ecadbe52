package fetch

import (
	"errors"
	"sync/atomic"
	"time"

	errs "github.com/frankli0324/go-fetch/internal/errors"
	"github.com/frankli0324/go-fetch/internal/http"
	"github.com/frankli0324/go-fetch/internal/metrics"
	"github.com/frankli0324/go-fetch/internal/reactor"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout          = 30 * time.Second
	DefaultReadBufferSize   = 4096
	DefaultMaxReadsPerEvent = 16
)

type Config struct {
	// Timeout covers a whole fetch, used when Submit is given none.
	Timeout time.Duration
	// ResolverTimeout is handed to the resolver, defaults to the fetch timeout.
	ResolverTimeout time.Duration
	// IdleTimeout aborts a fetch when a read-ready socket stays silent for
	// this long after the request was sent. 0 disables it.
	IdleTimeout      time.Duration
	ReadBufferSize   int
	MaxReadsPerEvent int
	MaxStatusLine    int
	MaxHeaderBytes   int
	// TrackOriginalContentLength records the advertised Content-Length in
	// the response header and the bytes actually received in Extra.
	TrackOriginalContentLength bool
	UserAgent                  string
	// MaxActive bounds fetches in flight, 0 means unbounded.
	MaxActive int

	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = DefaultReadBufferSize
	}
	if c.MaxReadsPerEvent <= 0 {
		c.MaxReadsPerEvent = DefaultMaxReadsPerEvent
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}

// Fetcher runs fetches on a single loop. Submit, Shutdown and the
// methods of [Handle] are safe for concurrent use.
type Fetcher struct {
	loop     reactor.Loop
	resolver Resolver
	cfg      Config
	log      logrus.FieldLogger

	nextID   atomic.Uint64
	inFlight atomic.Int64
	closed   atomic.Bool

	active map[uint64]*Fetch // loop goroutine only
}

func New(loop reactor.Loop, resolver Resolver, cfg Config) *Fetcher {
	cfg = cfg.withDefaults()
	return &Fetcher{
		loop:     loop,
		resolver: resolver,
		cfg:      cfg,
		log:      cfg.Logger,
		active:   map[uint64]*Fetch{},
	}
}

// Submit validates req and starts fetching it on the loop. on error no
// fetch exists and sink is never called. timeout <= 0 uses Config.Timeout.
func (f *Fetcher) Submit(req *http.Request, sink Sink, timeout time.Duration) (*Handle, error) {
	if sink == nil {
		return nil, errs.ErrInvalidRequest.Wrap(errors.New("nil sink"))
	}
	if f.closed.Load() {
		return nil, errs.ErrShutdown
	}
	pr, err := req.Prepare(f.cfg.UserAgent)
	if err != nil {
		return nil, err
	}
	if n := f.inFlight.Add(1); f.cfg.MaxActive > 0 && n > int64(f.cfg.MaxActive) {
		f.inFlight.Add(-1)
		return nil, errs.ErrTooManyFetches
	}
	if timeout <= 0 {
		timeout = f.cfg.Timeout
	}

	fx := newFetch(f, f.nextID.Add(1), pr, sink, timeout)
	if err := f.loop.Post(fx.start); err != nil {
		f.inFlight.Add(-1)
		return nil, errs.ErrShutdown.Wrap(err)
	}
	f.cfg.Metrics.Started()
	return &Handle{fx: fx}, nil
}

// Shutdown rejects further submissions and cancels every active fetch
// with ErrShutdown.
func (f *Fetcher) Shutdown() {
	if !f.closed.CompareAndSwap(false, true) {
		return
	}
	// a stopped loop leaves the fetches to Abort
	_ = f.loop.Post(func() {
		for _, fx := range f.active {
			fx.terminate(errs.ErrShutdown)
		}
	})
}

// Abort rejects further submissions and fails every active fetch right
// away with ErrShutdown wrapping cause. it must run on the loop goroutine,
// or after the loop stopped for good.
func (f *Fetcher) Abort(cause error) {
	f.closed.Store(true)
	for _, fx := range f.active {
		fx.terminate(errs.ErrShutdown.Wrap(cause))
	}
}

// InFlight is the number of fetches submitted and not yet completed.
func (f *Fetcher) InFlight() int {
	return int(f.inFlight.Load())
}
