package fetch

import (
	"errors"

	errs "github.com/frankli0324/go-fetch/internal/errors"
)

var errIdle = errors.New("no data received within idle timeout")

func (fx *Fetch) onTimeout() {
	fx.timer = nil // fired, nothing to stop
	if fx.phase == Done {
		return
	}
	fx.log.WithField("phase", fx.phase).Debug("fetch timed out")
	fx.terminate(errs.ErrTimeout)
}

// armIdle restarts the inter-read liveness timer, if one is configured.
func (fx *Fetch) armIdle() {
	d := fx.f.cfg.IdleTimeout
	if d <= 0 {
		return
	}
	fx.stopIdle()
	fx.idle = fx.f.loop.AfterFunc(d, func() {
		fx.idle = nil
		if fx.phase != Done {
			fx.terminate(errs.ErrTimeout.Wrap(errIdle))
		}
	})
}

func (fx *Fetch) stopIdle() {
	if fx.idle != nil {
		fx.idle.Stop()
		fx.idle = nil
	}
}
