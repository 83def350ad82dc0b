// FILE: relog/src/middleware/traffic.go

// Package middleware provides fasthttp handler wrappers that feed the
// request-correlated logging pipeline: request-id assignment, traffic
// logging, and per-client rate limiting.
package middleware

import (
	"bytes"
	"runtime/debug"
	"time"

	"relog/src/relog"

	"github.com/valyala/fasthttp"
)

var traffic = relog.New("relog.traffic")

// Traffic wraps a handler with traffic logging. Each request produces
// one INFO line on entry (method, path, client address, user agent) and
// one on completion (status, redirect target if any, elapsed time in
// microseconds). A panicking handler instead produces an "Aborted by"
// ERROR line plus one ERROR line per stack frame line, and the panic
// propagates unchanged.
func Traffic(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(c *fasthttp.RequestCtx) {
		userAgent := joinValues(c.Request.Header.PeekAll(fasthttp.HeaderUserAgent))
		traffic.Info(c, "%s %s %s %s",
			c.Method(), c.Path(), c.RemoteIP(), userAgent)

		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				traffic.Error(c, "Aborted by %v", rec)
				if relog.BacktracesEnabled() {
					for _, line := range bytes.Split(debug.Stack(), []byte("\n")) {
						if len(bytes.TrimSpace(line)) > 0 {
							traffic.Error(c, "%s", line)
						}
					}
				}
				// The middleware observes the fault, never swallows it.
				panic(rec)
			}
		}()

		next(c)

		elapsed := time.Since(start).Microseconds()
		redirect := ""
		if loc := c.Response.Header.Peek(fasthttp.HeaderLocation); len(loc) > 0 {
			redirect = " " + string(loc)
		}
		traffic.Info(c, "%d%s in %d μs",
			c.Response.StatusCode(), redirect, elapsed)
	}
}

// joinValues joins multi-valued header entries with a single space.
func joinValues(values [][]byte) string {
	return string(bytes.Join(values, []byte(" ")))
}
