package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	errs "github.com/frankli0324/go-fetch/internal/errors"
	"github.com/frankli0324/go-fetch/internal/http"
	"github.com/frankli0324/go-fetch/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var (
	benchRequests    int
	benchConcurrency int
	benchRate        float64
	benchTimeout     time.Duration
	benchHeaders     []string
	benchMetricsAddr string
)

var benchCmd = &cobra.Command{
	Use:   "bench URL",
	Short: "Fetch a URL repeatedly and report latency percentiles",
	Long: `Run a fixed number of fetches against one URL, all driven by a single
event loop, and print latency percentiles and outcomes.

Example:
  gofetch bench -n 10000 -c 100 http://localhost:8080/
  gofetch bench -n 600 --rate 10 --metrics-addr :9090 http://api.test/`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVarP(&benchRequests, "requests", "n", 100, "Number of fetches")
	benchCmd.Flags().IntVarP(&benchConcurrency, "concurrency", "c", 10, "Fetches in flight at once")
	benchCmd.Flags().Float64Var(&benchRate, "rate", 0, "Fetches started per second, 0 is unlimited")
	benchCmd.Flags().DurationVar(&benchTimeout, "timeout", 0, "Per fetch timeout (default fetcher.timeout)")
	benchCmd.Flags().StringArrayVarP(&benchHeaders, "header", "H", nil, "Extra request header, repeatable")
	benchCmd.Flags().StringVar(&benchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchRequests <= 0 || benchConcurrency <= 0 {
		return fmt.Errorf("--requests and --concurrency must be positive")
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	header, err := parseHeaders(benchHeaders)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	addr := benchMetricsAddr
	if addr == "" && cfg.Metrics.Enabled {
		addr = cfg.Metrics.Address
	}
	if addr != "" {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		stop := serveMetrics(addr, cfg.Metrics.Path, reg, log)
		defer stop()
	}

	c := newClient(cfg, log, m)
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var limiter *rate.Limiter
	if benchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(benchRate), 1)
	}

	s := newSummary()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(benchConcurrency)
	start := time.Now()
	for i := 0; i < benchRequests; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			fctx := ctx
			if benchTimeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(ctx, benchTimeout)
				defer cancel()
			}
			begin := time.Now()
			resp, body, err := c.CtxDo(fctx, &http.Request{URL: args[0], Header: header})
			code := 0
			if resp != nil {
				code = resp.Status.Code
			}
			s.record(time.Since(begin), code, int64(len(body)), err)
			return nil
		})
	}
	_ = g.Wait()
	s.elapsed = time.Since(start)

	s.print(os.Stdout)
	if n := s.total(); n > 0 && s.failed() == n {
		return errors.New("every fetch failed")
	}
	return nil
}

func serveMetrics(addr, path string, reg *prometheus.Registry, log logrus.FieldLogger) (stop func()) {
	mux := nethttp.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &nethttp.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.WithError(err).Error("metrics server failed")
		}
	}()
	log.WithField("addr", addr).Info("serving metrics")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

// summary aggregates bench results, safe for concurrent use.
type summary struct {
	mu       sync.Mutex
	hist     *hdrhistogram.Histogram // microseconds
	outcomes map[string]int
	statuses map[int]int
	bytes    int64
	elapsed  time.Duration
}

func newSummary() *summary {
	return &summary{
		hist:     hdrhistogram.New(1, int64(time.Hour/time.Microsecond), 3),
		outcomes: map[string]int{},
		statuses: map[int]int{},
	}
}

func (s *summary) record(took time.Duration, status int, bytes int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.hist.RecordValue(took.Microseconds())
	s.outcomes[errs.Kind(err)]++
	if status != 0 {
		s.statuses[status]++
	}
	s.bytes += bytes
}

func (s *summary) total() (n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.outcomes {
		n += c
	}
	return
}

func (s *summary) failed() int {
	s.mu.Lock()
	ok := s.outcomes["ok"]
	s.mu.Unlock()
	return s.total() - ok
}

func (s *summary) print(w io.Writer) {
	total, failed := s.total(), s.failed()
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(w, "fetches:   %d (%d failed)\n", total, failed)
	if s.elapsed > 0 {
		fmt.Fprintf(w, "elapsed:   %s (%.1f/s)\n", s.elapsed.Round(time.Millisecond), float64(total)/s.elapsed.Seconds())
	}
	fmt.Fprintf(w, "body:      %d bytes\n", s.bytes)
	if total > 0 {
		fmt.Fprintln(w, "latency:")
		for _, q := range []float64{50, 90, 99, 99.9} {
			fmt.Fprintf(w, "  p%-5v %s\n", q, us(s.hist.ValueAtQuantile(q)))
		}
		fmt.Fprintf(w, "  max    %s\n", us(s.hist.Max()))
	}

	keys := make([]string, 0, len(s.outcomes))
	for k := range s.outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(w, "outcomes:")
	for _, k := range keys {
		fmt.Fprintf(w, "  %-22s %d\n", k, s.outcomes[k])
	}

	codes := make([]int, 0, len(s.statuses))
	for c := range s.statuses {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	if len(codes) > 0 {
		fmt.Fprintln(w, "statuses:")
		for _, c := range codes {
			fmt.Fprintf(w, "  %d %d\n", c, s.statuses[c])
		}
	}
}

func us(v int64) time.Duration {
	return (time.Duration(v) * time.Microsecond).Round(10 * time.Microsecond)
}
