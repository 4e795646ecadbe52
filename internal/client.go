package internal

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frankli0324/go-fetch/internal/dialer"
	errs "github.com/frankli0324/go-fetch/internal/errors"
	"github.com/frankli0324/go-fetch/internal/fetch"
	"github.com/frankli0324/go-fetch/internal/http"
	"github.com/frankli0324/go-fetch/internal/netpoll"
	"github.com/sirupsen/logrus"
)

type Handler = func(ctx context.Context, req *http.Request) (*http.Response, []byte, error)
type Middleware func(next Handler) Handler

var ErrClosed = errors.New("client is closed")

// Client runs fetches on a private event loop goroutine, started on
// first use. the zero value is ready to use, Config and ResolveConfig
// must not be changed after that.
type Client struct {
	Config        fetch.Config
	ResolveConfig *dialer.ResolveConfig

	middlewares []Middleware

	once    sync.Once
	initErr error
	loop    *netpoll.Loop
	fetcher *fetch.Fetcher
	stop    context.CancelFunc
	stopped chan struct{}
	closed  sync.Once
}

// Use appends mw to the end of the chain. The first "Use"d mw executes first
func (c *Client) Use(mws ...Middleware) {
	c.middlewares = append(c.middlewares, mws...)
}

func (c *Client) init() error {
	c.once.Do(func() {
		log := c.Config.Logger
		if log == nil {
			log = logrus.StandardLogger()
		}
		loop, err := netpoll.New(log)
		if err != nil {
			c.initErr = err
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		c.loop, c.stop, c.stopped = loop, cancel, make(chan struct{})
		c.fetcher = fetch.New(loop, dialer.NewResolver(loop, c.ResolveConfig, log), c.Config)
		go func() {
			defer close(c.stopped)
			err := loop.Run(ctx)
			if !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("event loop stopped")
			}
			// nothing can drive the fetches still active
			c.fetcher.Abort(err)
		}()
	})
	return c.initErr
}

// Submit starts a streaming fetch, see [fetch.Fetcher.Submit]. unless req
// says otherwise the server is asked to close the connection after the
// response, ending a body that carries no Content-Length.
func (c *Client) Submit(req *http.Request, sink fetch.Sink, timeout time.Duration) (*fetch.Handle, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	if !req.Header.Has(http.HeaderConnection) {
		r := *req
		r.Header = append(req.Header.Clone(), http.Field{Name: http.HeaderConnection, Value: "close"})
		req = &r
	}
	return c.fetcher.Submit(req, sink, timeout)
}

// CtxDo fetches req and buffers the whole body. the fetch is cancelled
// when ctx is done, a ctx deadline becomes the fetch timeout.
func (c *Client) CtxDo(ctx context.Context, req *http.Request) (*http.Response, []byte, error) {
	next := c.do
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		next = c.middlewares[i](next)
	}
	return next(ctx, req)
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, []byte, error) {
	var timeout time.Duration
	if dl, ok := ctx.Deadline(); ok {
		if timeout = time.Until(dl); timeout <= 0 {
			return nil, nil, errs.ErrTimeout.Wrap(ctx.Err())
		}
	}
	sink := &bufferSink{}
	h, err := c.Submit(req, sink, timeout)
	if err != nil {
		return nil, nil, err
	}
	select {
	case <-h.Done():
	case <-ctx.Done():
		h.Cancel()
		<-h.Done()
		switch {
		case !errors.Is(sink.err, errs.ErrCancelled):
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			sink.err = errs.ErrTimeout.Wrap(ctx.Err())
		default:
			sink.err = errs.ErrCancelled.Wrap(context.Cause(ctx))
		}
	}
	return sink.resp, sink.body.Bytes(), sink.err
}

// Close cancels every fetch in flight, waits for their sinks and stops
// the loop. it must not race with Submit or CtxDo.
func (c *Client) Close() error {
	var err error
	c.closed.Do(func() {
		if c.init() != nil {
			return
		}
		c.fetcher.Shutdown()
		// runs after the cancellations posted by Shutdown
		if c.loop.Post(c.stop) != nil {
			c.stop()
		}
		<-c.stopped
		err = c.loop.Close()
	})
	return err
}

type bufferSink struct {
	body bytes.Buffer
	resp *http.Response
	err  error
}

func (s *bufferSink) Write(p []byte) error {
	_, err := s.body.Write(p)
	return err
}

func (s *bufferSink) Done(resp *http.Response, err error) {
	s.resp, s.err = resp, err
}
