// FILE: relog/src/middleware/middleware_test.go
package middleware

import (
	"bytes"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"relog/src/relog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

var testOut bytes.Buffer

func TestMain(m *testing.M) {
	noColor := false
	relog.Initialize(relog.Options{
		Level:    relog.LevelDebug,
		Output:   &testOut,
		Colorize: &noColor,
	})
	code := m.Run()
	relog.Shutdown()
	os.Exit(code)
}

// capture flushes pending writes and clears the shared output buffer.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	relog.Sync()
	testOut.Reset()
	return &testOut
}

func outputLines(out *bytes.Buffer) []string {
	relog.Sync()
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func newRequestCtx(method, uri string, headers map[string]string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c := &fasthttp.RequestCtx{}
	remote := &net.TCPAddr{IP: net.ParseIP("10.0.0.1"), Port: 40123}
	c.Init(&req, remote, nil)
	return c
}

func TestTrafficLogsStartAndCompletion(t *testing.T) {
	out := capture(t)

	handler := RequestID(Traffic(func(c *fasthttp.RequestCtx) {
		time.Sleep(1500 * time.Microsecond)
		c.SetStatusCode(fasthttp.StatusCreated)
	}))

	c := newRequestCtx("GET", "/widgets", map[string]string{"User-Agent": "curl/8"})
	handler(c)

	id := GetRequestID(c)
	require.NotEmpty(t, id)

	lines := outputLines(out)
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "GET /widgets 10.0.0.1 curl/8")
	assert.Contains(t, lines[0], " INFO REQ "+id)

	assert.Contains(t, lines[1], " REQ "+id)
	assert.Regexp(t, `201 in \d+ μs$`, lines[1])
	assert.NotContains(t, lines[1], "Location")
}

func TestTrafficLogsRedirectTarget(t *testing.T) {
	out := capture(t)

	handler := RequestID(Traffic(func(c *fasthttp.RequestCtx) {
		c.Response.Header.Set(fasthttp.HeaderLocation, "/next")
		c.SetStatusCode(fasthttp.StatusFound)
	}))

	handler(newRequestCtx("GET", "/old", nil))

	lines := outputLines(out)
	require.Len(t, lines, 2)
	assert.Regexp(t, `302 /next in \d+ μs$`, lines[1])
}

func TestTrafficPanicLogsAbortAndRethrows(t *testing.T) {
	out := capture(t)

	handler := RequestID(Traffic(func(c *fasthttp.RequestCtx) {
		panic("boom")
	}))

	c := newRequestCtx("POST", "/widgets", nil)
	require.PanicsWithValue(t, "boom", func() { handler(c) })

	lines := outputLines(out)
	require.GreaterOrEqual(t, len(lines), 3, "expected start line, abort line, stack lines")

	assert.Contains(t, lines[1], "ERROR")
	assert.Contains(t, lines[1], "Aborted by boom")

	// One ERROR line per non-empty stack line, no completion line.
	for _, line := range lines[2:] {
		assert.Contains(t, line, "ERROR")
		assert.NotEmpty(t, strings.TrimSpace(line))
	}
	assert.NotContains(t, out.String(), " μs")
}

func TestRequestIDAssignsIncreasingIDs(t *testing.T) {
	capture(t)

	var inside string
	handler := RequestID(func(c *fasthttp.RequestCtx) {
		inside = GetRequestID(c)
	})

	c1 := newRequestCtx("GET", "/a", nil)
	handler(c1)
	first := GetRequestID(c1)
	require.NotEmpty(t, first)
	assert.Equal(t, first, inside)

	c2 := newRequestCtx("GET", "/b", nil)
	handler(c2)
	second := GetRequestID(c2)

	n1, err := strconv.ParseUint(first, 10, 64)
	require.NoError(t, err)
	n2, err := strconv.ParseUint(second, 10, 64)
	require.NoError(t, err)
	assert.Equal(t, n1+1, n2)
}

func TestRequestIDAbsentWithoutMiddleware(t *testing.T) {
	c := newRequestCtx("GET", "/a", nil)
	assert.Empty(t, GetRequestID(c))
}

func TestRateLimit(t *testing.T) {
	out := capture(t)

	rl := NewRateLimiter(1, 1, 60)
	defer rl.Stop()

	calls := 0
	handler := rl.Middleware(func(c *fasthttp.RequestCtx) {
		calls++
		c.SetStatusCode(fasthttp.StatusOK)
	})

	c1 := newRequestCtx("GET", "/a", nil)
	handler(c1)
	assert.Equal(t, fasthttp.StatusOK, c1.Response.StatusCode())

	c2 := newRequestCtx("GET", "/a", nil)
	handler(c2)
	assert.Equal(t, fasthttp.StatusTooManyRequests, c2.Response.StatusCode())

	assert.Equal(t, 1, calls)
	relog.Sync()
	assert.Contains(t, out.String(), "Rate limit exceeded for 10.0.0.1")
}
