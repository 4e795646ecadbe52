package dialer

import (
	"context"
	"errors"
	"net/netip"
	"time"

	"github.com/sirupsen/logrus"
)

var errNoAddress = errors.New("no suitable address")

// Poster is the part of the event loop the resolver needs.
type Poster interface {
	Post(f func()) error
}

// Resolver resolves host names off the event loop and reports back on it.
type Resolver struct {
	loop   Poster
	cfg    *ResolveConfig
	log    logrus.FieldLogger
	lookup func(ctx context.Context, network, host, dns string) ([]netip.Addr, error)
}

func NewResolver(loop Poster, cfg *ResolveConfig, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{loop: loop, cfg: cfg.Clone(), log: log, lookup: LookupIPServer}
}

// Resolve calls done on the loop goroutine exactly once, unless cancel is
// called before. cancel must be called on the loop goroutine as well.
func (r *Resolver) Resolve(host string, timeout time.Duration, done func([]netip.Addr, error)) (cancel func()) {
	cancelled := false
	deliver := func(addrs []netip.Addr, err error) {
		// a stopped loop has no fetch left to call back
		_ = r.loop.Post(func() {
			if !cancelled {
				done(addrs, err)
			}
		})
	}

	if r.cfg != nil {
		if mapped, ok := r.cfg.StaticHosts[host]; ok {
			host = mapped
		}
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		deliver(r.filter([]netip.Addr{ip}))
		return func() { cancelled = true }
	}

	var (
		ctx  = context.Background()
		stop context.CancelFunc
	)
	if timeout > 0 {
		ctx, stop = context.WithTimeout(ctx, timeout)
	} else {
		ctx, stop = context.WithCancel(ctx)
	}
	dns := ""
	if r.cfg != nil {
		dns = r.cfg.CustomDNSServer
	}
	go func() {
		defer stop()
		start := time.Now()
		addrs, err := r.lookup(ctx, r.cfg.network(), host, dns)
		r.log.WithFields(logrus.Fields{
			"host": host, "addrs": len(addrs), "took": time.Since(start),
		}).Debug("lookup finished")
		if err != nil {
			deliver(nil, err)
			return
		}
		deliver(r.filter(addrs))
	}()
	return func() {
		cancelled = true
		stop()
	}
}

func (r *Resolver) filter(addrs []netip.Addr) ([]netip.Addr, error) {
	network := r.cfg.network()
	res := addrs[:0:0]
	for _, a := range addrs {
		a = a.Unmap()
		if network == "ip4" && !a.Is4() || network == "ip6" && !a.Is6() {
			continue
		}
		res = append(res, a)
	}
	if len(res) == 0 {
		return nil, errNoAddress
	}
	return res, nil
}
