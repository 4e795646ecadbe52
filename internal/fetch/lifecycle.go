package fetch

import (
	"strconv"
	"time"

	errs "github.com/frankli0324/go-fetch/internal/errors"
	"github.com/frankli0324/go-fetch/internal/http"
	"github.com/sirupsen/logrus"
)

// terminate ends the fetch with err, err == nil is a success.
func (fx *Fetch) terminate(err error) {
	sink := fx.sink
	if sink == nil {
		fx.log.WithFields(logrus.Fields{
			"phase": fx.phase, "first": fx.err, "second": err,
		}).Error(errs.ErrLifecycleViolation.Error())
		panic(errs.ErrLifecycleViolation)
	}
	fx.sink = nil

	fx.release()
	fx.advance(Done)
	fx.err = err

	resp := fx.resp
	resp.End = time.Now()
	if fx.f.cfg.TrackOriginalContentLength && resp.Header.Has(http.HeaderXOriginalContentLength) {
		resp.Extra.Set(http.HeaderXOriginalContentLength, strconv.FormatInt(resp.BytesReceived, 10))
	}

	delete(fx.f.active, fx.id)
	fx.f.inFlight.Add(-1)
	fx.f.cfg.Metrics.Finished(errs.Kind(err), resp.End.Sub(resp.Start), resp.BytesReceived)

	log := fx.log.WithFields(logrus.Fields{
		"status": resp.Status.Code,
		"bytes":  resp.BytesReceived,
		"took":   resp.End.Sub(resp.Start),
	})
	if err != nil {
		log.WithError(err).Warn("fetch failed")
	} else {
		log.Debug("fetch completed")
	}

	sink.Done(resp, err)
	close(fx.done)
}

// release drops every registration and buffer the fetch holds, after it
// returns no callback can reach the fetch any more.
func (fx *Fetch) release() {
	if fx.timer != nil {
		fx.timer.Stop()
		fx.timer = nil
	}
	fx.stopIdle()
	if fx.cancelResolve != nil {
		fx.cancelResolve()
		fx.cancelResolve = nil
	}
	if fx.sock != nil {
		fx.sock.OnReadable(nil)
		fx.sock.OnWritable(nil)
		if err := fx.sock.Close(); err != nil {
			fx.log.WithError(err).Debug("close failed")
		}
		fx.sock = nil
	}
	fx.out, fx.buf = nil, nil
	fx.status, fx.header = nil, nil
}
