package config

import (
	"fmt"
	"net"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Load reads and parses a YAML configuration file. an empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func Validate(cfg *Config) error {
	f := &cfg.Fetcher
	if f.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be positive")
	}
	if f.ResolverTimeout < 0 {
		return fmt.Errorf("fetcher.resolver_timeout must not be negative")
	}
	if f.IdleTimeout < 0 {
		return fmt.Errorf("fetcher.idle_timeout must not be negative")
	}
	if f.ReadBufferSize < 64 {
		return fmt.Errorf("fetcher.read_buffer_size must be at least 64")
	}
	if f.MaxReadsPerEvent <= 0 {
		return fmt.Errorf("fetcher.max_reads_per_event must be positive")
	}
	if f.MaxActive < 0 {
		return fmt.Errorf("fetcher.max_active must not be negative")
	}

	switch cfg.Resolver.Network {
	case "":
		cfg.Resolver.Network = "ip"
	case "ip", "ip4", "ip6":
	default:
		return fmt.Errorf("resolver.network must be one of ip, ip4, ip6")
	}
	if s := cfg.Resolver.DNSServer; s != "" {
		if _, _, err := net.SplitHostPort(s); err != nil {
			return fmt.Errorf("resolver.dns_server: %w", err)
		}
	}

	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Address == "" {
		return fmt.Errorf("metrics.address is required when metrics are enabled")
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	return nil
}
