package fetch

import (
	"github.com/frankli0324/go-fetch/dialer"
)

type ResolveConfig = dialer.ResolveConfig

// NewResolver builds the default resolver, reporting back through loop.
var NewResolver = dialer.NewResolver
