package fetch

import (
	"github.com/frankli0324/go-fetch/internal"
	"github.com/frankli0324/go-fetch/internal/fetch"
	"github.com/frankli0324/go-fetch/internal/netpoll"
)

// Client is the blocking convenience API: it owns an event loop goroutine
// and buffers response bodies. the zero value is ready to use.
type Client = internal.Client
type Handler = internal.Handler
type Middleware = internal.Middleware

// Fetcher is the non-blocking core, for callers that run their own loop
// and consume bodies as a stream.
type Fetcher = fetch.Fetcher
type Config = fetch.Config
type Handle = fetch.Handle
type Sink = fetch.Sink
type SinkFuncs = fetch.SinkFuncs
type Resolver = fetch.Resolver

// Loop is the poll(2) based event loop a [Fetcher] runs on.
type Loop = netpoll.Loop

var (
	NewFetcher = fetch.New
	NewLoop    = netpoll.New
)
