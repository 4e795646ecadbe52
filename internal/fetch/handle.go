package fetch

import errs "github.com/frankli0324/go-fetch/internal/errors"

// Handle refers to a submitted fetch from any goroutine.
type Handle struct {
	fx *Fetch
}

func (h *Handle) ID() uint64  { return h.fx.id }
func (h *Handle) URL() string { return h.fx.resp.URL }

// Cancel aborts the fetch with ErrCancelled. it does nothing once the
// fetch is done.
func (h *Handle) Cancel() {
	fx := h.fx
	_ = fx.f.loop.Post(func() {
		if fx.phase != Done {
			fx.terminate(errs.ErrCancelled)
		}
	})
}

// Done is closed after the sink was told about completion.
func (h *Handle) Done() <-chan struct{} { return h.fx.done }

// Err is the completion error, only meaningful once Done is closed.
func (h *Handle) Err() error {
	select {
	case <-h.fx.done:
		return h.fx.err
	default:
		return nil
	}
}
