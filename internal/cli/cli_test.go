package cli

import (
	"bytes"
	"sync"
	"testing"
	"time"

	errs "github.com/frankli0324/go-fetch/internal/errors"
	"github.com/frankli0324/go-fetch/internal/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	s := newSummary()
	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.record(time.Duration(i)*time.Millisecond, 200, 10, nil)
		}()
	}
	wg.Wait()
	s.record(5*time.Second, 0, 0, errs.ErrTimeout)
	s.record(time.Millisecond, 502, 0, errs.ErrMalformedHeaders.Wrap(nil))
	s.elapsed = time.Second

	assert.Equal(t, 102, s.total())
	assert.Equal(t, 2, s.failed())

	var out bytes.Buffer
	s.print(&out)
	got := out.String()
	assert.Contains(t, got, "fetches:   102 (2 failed)")
	assert.Contains(t, got, "body:      1000 bytes")
	assert.Contains(t, got, "p50")
	assert.Contains(t, got, "p99.9")
	assert.Contains(t, got, "  ok                     100\n")
	assert.Contains(t, got, "  timeout                1\n")
	assert.Contains(t, got, "  200 100\n")
	assert.NotContains(t, got, "  0 ")
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"Accept: text/html", "X-Empty:", "X-Colon: a:b"})
	require.NoError(t, err)
	assert.Equal(t, http.Header{
		{Name: "Accept", Value: "text/html"},
		{Name: "X-Empty", Value: ""},
		{Name: "X-Colon", Value: "a:b"},
	}, h)

	_, err = parseHeaders([]string{"no colon"})
	assert.Error(t, err)
	_, err = parseHeaders([]string{": value"})
	assert.Error(t, err)
}

func TestWriteHead(t *testing.T) {
	var out bytes.Buffer
	writeHead(&out, &http.Response{
		Status: http.Status{Major: 1, Minor: 1, Code: 404, Reason: "Not Found"},
		Header: http.Header{{Name: "Server", Value: "x"}},
	})
	assert.Equal(t, "HTTP/1.1 404 Not Found\r\nServer: x\r\n\r\n", out.String())
}
