package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/frankli0324/go-fetch/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "gofetch.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, config.Validate(cfg))

	loaded, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
fetcher:
  timeout: 3s
  idle_timeout: 500ms
  track_original_content_length: true
  user_agent: bench/1
resolver:
  network: ip4
  dns_server: 127.0.0.1:53
  static_hosts:
    example.test: 10.0.0.1
log:
  level: debug
  format: json
`))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Fetcher.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Fetcher.IdleTimeout)
	assert.Equal(t, 5*time.Second, cfg.Fetcher.ResolverTimeout, "defaults survive")
	assert.Equal(t, 4096, cfg.Fetcher.ReadBufferSize)
	assert.True(t, cfg.Fetcher.TrackOriginalContentLength)
	assert.Equal(t, "bench/1", cfg.Fetcher.UserAgent)
	assert.Equal(t, "ip4", cfg.Resolver.Network)
	assert.Equal(t, map[string]string{"example.test": "10.0.0.1"}, cfg.Resolver.StaticHosts)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = config.Load(writeConfig(t, "fetcher: [not, a, map]"))
	assert.ErrorContains(t, err, "failed to parse config file")

	for body, msg := range map[string]string{
		"fetcher: {timeout: 0s}":                "fetcher.timeout",
		"fetcher: {read_buffer_size: 8}":        "fetcher.read_buffer_size",
		"fetcher: {max_active: -1}":             "fetcher.max_active",
		"resolver: {network: tcp}":              "resolver.network",
		"resolver: {dns_server: 10.0.0.1}":      "resolver.dns_server",
		"log: {level: loud}":                    "log.level",
		"log: {format: xml}":                    "log.format",
		"metrics: {enabled: true, address: ''}": "metrics.address",
	} {
		t.Run(msg, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, body))
			assert.ErrorContains(t, err, "invalid configuration")
			assert.ErrorContains(t, err, msg)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := config.Log{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())

	l.Info("hidden")
	l.WithField("fetch", 1).Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"fetch":1`)

	_, err = config.Log{Level: "nope"}.NewLogger(&buf)
	assert.Error(t, err)
}
