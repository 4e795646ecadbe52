package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/frankli0324/go-fetch/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinished(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.Started()
	m.Started()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchesActive))

	m.Finished("ok", 20*time.Millisecond, 480)
	m.Finished("timeout", time.Second, 0)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.FetchesActive))
	assert.Equal(t, 480.0, testutil.ToFloat64(m.BodyBytesTotal))
	require.NoError(t, testutil.CollectAndCompare(m.FetchesTotal, strings.NewReader(`
# HELP gofetch_fetches_total Completed fetches by outcome
# TYPE gofetch_fetches_total counter
gofetch_fetches_total{outcome="ok"} 1
gofetch_fetches_total{outcome="timeout"} 1
`)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.FetchDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Started()
		m.Finished("ok", time.Millisecond, 1)
	})
}
