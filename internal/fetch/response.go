package fetch

import (
	"strconv"

	errs "github.com/frankli0324/go-fetch/internal/errors"
	"github.com/frankli0324/go-fetch/internal/http"
	"github.com/frankli0324/go-fetch/internal/transport"
)

// handleChunk feeds b to the active response phase. whatever a phase
// leaves unconsumed goes to the next one within the same call.
func (fx *Fetch) handleChunk(b []byte) {
	for fx.phase != Done {
		switch fx.phase {
		case ReceivingStatusLine:
			if fx.status == nil {
				fx.status = transport.NewStatusLineParser(&fx.resp.Status, fx.f.cfg.MaxStatusLine)
			}
			s, rest, err := fx.status.Parse(b)
			if err != nil {
				fx.terminate(err)
				return
			}
			if s == transport.Pending {
				return
			}
			fx.status = nil
			fx.advance(ReceivingHeaders)
			b = rest
		case ReceivingHeaders:
			if fx.status != nil {
				// status line of the response following an interim one
				s, rest, err := fx.status.Parse(b)
				if err != nil {
					fx.terminate(err)
					return
				}
				if s == transport.Pending {
					return
				}
				fx.status = nil
				b = rest
			}
			if fx.header == nil {
				fx.header = transport.NewHeaderParser(&fx.resp.Header, fx.f.cfg.MaxHeaderBytes)
			}
			s, rest, err := fx.header.Parse(b)
			if err != nil {
				fx.terminate(err)
				return
			}
			if s == transport.Pending {
				return
			}
			fx.header = nil
			b = rest
			if !fx.interim() {
				fx.headersComplete()
			}
		case ReceivingBody:
			fx.body(b)
			return
		default:
			return
		}
		if len(b) == 0 {
			return
		}
	}
}

// interim drops a 1xx response other than 101 Switching Protocols, the
// final response follows it on the same connection (RFC9110 section 15.2).
func (fx *Fetch) interim() bool {
	resp := fx.resp
	if code := resp.Status.Code; code < 100 || code > 199 || code == 101 {
		return false
	}
	fx.log.WithField("status", resp.Status.Code).Debug("interim response skipped")
	resp.Status, resp.Header = http.Status{}, nil
	fx.status = transport.NewStatusLineParser(&resp.Status, fx.f.cfg.MaxStatusLine)
	return true
}

func (fx *Fetch) headersComplete() {
	resp := fx.resp
	cl, err := transport.ContentLength(resp.Header)
	if err != nil {
		fx.terminate(err)
		return
	}
	if fx.f.cfg.TrackOriginalContentLength && cl >= 0 {
		resp.Header.Set(http.HeaderXOriginalContentLength, strconv.FormatInt(cl, 10))
	}
	fx.log.WithField("status", resp.Status.Code).Debug("headers received")

	fx.advance(ReceivingBody)
	fx.remaining = cl
	if !transport.BodyAllowed(fx.req.Method, resp.Status.Code) {
		fx.remaining = 0
	}
	if fx.remaining == 0 {
		fx.terminate(nil)
	}
}

// body counts b and hands it to the sink, capped at Content-Length.
func (fx *Fetch) body(b []byte) {
	if fx.remaining >= 0 && int64(len(b)) > fx.remaining {
		fx.log.WithField("extra", int64(len(b))-fx.remaining).Debug("discarding bytes past Content-Length")
		b = b[:fx.remaining]
	}
	if len(b) == 0 {
		return
	}
	fx.resp.BytesReceived += int64(len(b))
	if err := fx.sink.Write(b); err != nil {
		fx.terminate(errs.ErrSinkRejected.Wrap(err))
		return
	}
	if fx.remaining > 0 {
		if fx.remaining -= int64(len(b)); fx.remaining == 0 {
			fx.terminate(nil)
		}
	}
}
