package fetch

import (
	"errors"
	"io"
	"net/netip"
	"syscall"

	errs "github.com/frankli0324/go-fetch/internal/errors"
)

var errNoAddress = errors.New("resolver returned no address")

func (fx *Fetch) onResolved(addrs []netip.Addr, err error) {
	if fx.phase != ResolvingName {
		fx.log.WithField("phase", fx.phase).Debug("late resolver callback")
		return
	}
	fx.cancelResolve = nil
	switch {
	case err != nil:
		fx.terminate(errs.ErrResolutionFailed.Wrap(err))
	case len(addrs) == 0:
		fx.terminate(errs.ErrResolutionFailed.Wrap(errNoAddress))
	default:
		fx.connect(netip.AddrPortFrom(addrs[0], fx.req.U.Port))
	}
}

func (fx *Fetch) connect(addr netip.AddrPort) {
	fx.log.WithField("addr", addr).Debug("connecting")
	sock, err := fx.f.loop.Dial(addr)
	if err != nil {
		fx.terminate(errs.ErrConnection.Wrap(err))
		return
	}
	fx.sock = sock
	fx.advance(Connecting)
	sock.OnWritable(fx.onWritable)
}

func (fx *Fetch) onWritable() {
	switch fx.phase {
	case Connecting:
		fx.advance(SendingRequest)
		fallthrough
	case SendingRequest:
		fx.send()
	default:
		fx.log.WithField("phase", fx.phase).Debug("spurious write readiness")
	}
}

// send writes as much of the request as the socket takes.
func (fx *Fetch) send() {
	for len(fx.out) > 0 {
		n, err := fx.sock.Write(fx.out)
		fx.out = fx.out[n:]
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) {
				break
			}
			fx.terminate(errs.ErrConnection.Wrap(err))
			return
		}
		if n == 0 {
			break
		}
	}
	if len(fx.out) > 0 {
		fx.sock.OnWritable(fx.onWritable)
		return
	}

	fx.out = nil
	fx.buf = make([]byte, fx.f.cfg.ReadBufferSize)
	fx.advance(ReceivingStatusLine)
	fx.sock.OnReadable(fx.onReadable)
	fx.armIdle()
}

// onReadable drains the socket into the scratch buffer, for at most
// MaxReadsPerEvent reads before yielding back to the loop.
func (fx *Fetch) onReadable() {
	if fx.phase < ReceivingStatusLine || fx.phase == Done {
		fx.log.WithField("phase", fx.phase).Debug("spurious read readiness")
		return
	}
	for i := 0; i < fx.f.cfg.MaxReadsPerEvent; i++ {
		n, err := fx.sock.Read(fx.buf)
		if n > 0 {
			fx.handleChunk(fx.buf[:n])
			if fx.phase == Done {
				return
			}
		}
		if err != nil {
			switch {
			case errors.Is(err, syscall.EAGAIN):
			case errors.Is(err, io.EOF):
				fx.onClose()
				return
			default:
				fx.terminate(errs.ErrConnection.Wrap(err))
				return
			}
			break
		}
	}
	fx.sock.OnReadable(fx.onReadable)
	fx.armIdle()
}

// onClose handles an orderly shutdown by the peer. a close once the
// headers are complete ends the body, anything earlier is a failure.
func (fx *Fetch) onClose() {
	if fx.phase == ReceivingBody {
		fx.terminate(nil)
		return
	}
	fx.terminate(errs.ErrConnection.Wrap(io.ErrUnexpectedEOF))
}
