package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Fetcher  Fetcher  `yaml:"fetcher"`
	Resolver Resolver `yaml:"resolver"`
	Log      Log      `yaml:"log"`
	Metrics  Metrics  `yaml:"metrics"`
}

// Fetcher configures the fetch state machine.
type Fetcher struct {
	Timeout                    time.Duration `yaml:"timeout"`
	ResolverTimeout            time.Duration `yaml:"resolver_timeout"`
	IdleTimeout                time.Duration `yaml:"idle_timeout"` // 0 disables the inter-read timer
	ReadBufferSize             int           `yaml:"read_buffer_size"`
	MaxReadsPerEvent           int           `yaml:"max_reads_per_event"`
	TrackOriginalContentLength bool          `yaml:"track_original_content_length"`
	UserAgent                  string        `yaml:"user_agent"`
	MaxActive                  int           `yaml:"max_active"`
}

// Resolver configures name resolution.
type Resolver struct {
	DNSServer   string            `yaml:"dns_server,omitempty"` // host:port
	Network     string            `yaml:"network"`
	StaticHosts map[string]string `yaml:"static_hosts,omitempty"`
}

// Log configures logrus.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: Fetcher{
			Timeout:          30 * time.Second,
			ResolverTimeout:  5 * time.Second,
			ReadBufferSize:   4096,
			MaxReadsPerEvent: 16,
			UserAgent:        "go-fetch",
		},
		Resolver: Resolver{
			Network: "ip",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Metrics: Metrics{
			Address: ":9090",
			Path:    "/metrics",
		},
	}
}
