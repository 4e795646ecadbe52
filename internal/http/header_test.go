package http_test

import (
	"testing"

	"github.com/frankli0324/go-fetch/internal/http"
	"github.com/stretchr/testify/assert"
)

func TestHeader(t *testing.T) {
	var h http.Header
	h.Add("Content-Type", "text/plain")
	h.Add("x-a", "1")
	h.Add("X-A", "2")

	assert.Equal(t, "text/plain", h.Get("content-type"))
	assert.Equal(t, []string{"1", "2"}, h.Values("X-a"))
	assert.True(t, h.Has("CONTENT-TYPE"))
	assert.False(t, h.Has("Content-Length"))
	assert.Empty(t, h.Get("missing"))

	c := h.Clone()
	h.Set("X-A", "3")
	assert.Equal(t, http.Header{{"Content-Type", "text/plain"}, {"X-A", "3"}}, h)
	assert.Equal(t, []string{"1", "2"}, c.Values("x-a"), "clone must not share storage")

	h.Del("content-type")
	assert.Equal(t, http.Header{{"X-A", "3"}}, h)
}

func TestOriginalContentLength(t *testing.T) {
	r := &http.Response{}
	assert.EqualValues(t, -1, r.OriginalContentLength())
	r.Extra.Set(http.HeaderXOriginalContentLength, "480")
	assert.EqualValues(t, 480, r.OriginalContentLength())
	r.Extra.Set(http.HeaderXOriginalContentLength, "junk")
	assert.EqualValues(t, -1, r.OriginalContentLength())
}

func TestStatus(t *testing.T) {
	s := http.Status{Major: 1, Minor: 1, Code: 404, Reason: "Not Found"}
	assert.Equal(t, "HTTP/1.1", s.Proto())
	assert.Equal(t, "HTTP/1.1 404 Not Found", s.String())
	assert.Empty(t, http.Status{}.String())
}
