package dialer

import (
	"github.com/frankli0324/go-fetch/internal/dialer"
)

// we need a dedicated resolver for two scenarios:
//
//  1. to keep name resolution off the event loop, the result is
//     posted back to the loop instead of being waited for
//  2. to customize the DNS server used for resolving hostname
//
// the standard library didn't provide a intuitive way of
// setting DNS server addresses since it only follows the
// system configuration (e.g. /etc/resolv.conf), leaving us only
// one option of using [net.Resolver.Dial] hook with a Go Resolver.
type ResolveConfig = dialer.ResolveConfig

// Resolver is the default asynchronous resolver used by a zero value Client.
type Resolver = dialer.Resolver

// Poster is the part of an event loop a [Resolver] reports back through.
type Poster = dialer.Poster

var (
	NewResolver    = dialer.NewResolver
	LookupIPServer = dialer.LookupIPServer
)
