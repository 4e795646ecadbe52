package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/frankli0324/go-fetch/internal"
	"github.com/frankli0324/go-fetch/internal/config"
	"github.com/frankli0324/go-fetch/internal/dialer"
	"github.com/frankli0324/go-fetch/internal/fetch"
	"github.com/frankli0324/go-fetch/internal/http"
	"github.com/frankli0324/go-fetch/internal/metrics"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gofetch",
	Short: "Non-blocking HTTP/1.1 fetcher",
	Long: `gofetch drives HTTP/1.1 fetches from a single poll(2) event loop.

Get started:
  gofetch get http://example.com/           Print a response body
  gofetch get -i http://example.com/        Include status line and headers
  gofetch bench -n 1000 -c 50 http://host/  Measure latency percentiles`,
	Version:       fmt.Sprintf("%s (built %s)", version, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Override log.format (text, json)")
}

// SetVersion sets the version info
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// setup loads the configuration and applies the command line overrides.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newClient(cfg *config.Config, log logrus.FieldLogger, m *metrics.Metrics) *internal.Client {
	f := cfg.Fetcher
	return &internal.Client{
		Config: fetch.Config{
			Timeout:                    f.Timeout,
			ResolverTimeout:            f.ResolverTimeout,
			IdleTimeout:                f.IdleTimeout,
			ReadBufferSize:             f.ReadBufferSize,
			MaxReadsPerEvent:           f.MaxReadsPerEvent,
			TrackOriginalContentLength: f.TrackOriginalContentLength,
			UserAgent:                  f.UserAgent,
			MaxActive:                  f.MaxActive,
			Logger:                     log,
			Metrics:                    m,
		},
		ResolveConfig: &dialer.ResolveConfig{
			CustomDNSServer: cfg.Resolver.DNSServer,
			Network:         cfg.Resolver.Network,
			StaticHosts:     cfg.Resolver.StaticHosts,
		},
	}
}

// parseHeaders turns curl style "Name: Value" arguments into fields.
func parseHeaders(raw []string) (http.Header, error) {
	h := make(http.Header, 0, len(raw))
	for _, r := range raw {
		name, value, ok := strings.Cut(r, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("malformed header %q, want 'Name: Value'", r)
		}
		h.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return h, nil
}
