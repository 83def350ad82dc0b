// FILE: relog/src/middleware/requestid.go
package middleware

import (
	"strconv"
	"sync/atomic"

	"relog/src/internal/correlate"

	"github.com/valyala/fasthttp"
)

// lastRequestID mints short decimal ids. Ids are unique among
// concurrently-live requests, not across restarts, and their trailing
// digit drives the reporter's color striping.
var lastRequestID atomic.Uint64

// RequestID assigns a correlation id to each request before the
// downstream handler runs. The id is stored on the request itself and
// bound to the handling goroutine, so both explicit-context and
// ambient lookups resolve it for the request's lifetime.
func RequestID(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(c *fasthttp.RequestCtx) {
		id := strconv.FormatUint(lastRequestID.Add(1), 10)
		correlate.Attach(c, id)

		correlate.Bind(id)
		defer correlate.Unbind()

		next(c)
	}
}

// GetRequestID returns the correlation id assigned to the request, or
// "" when none was assigned.
func GetRequestID(c *fasthttp.RequestCtx) string {
	id, _ := correlate.FromContext(c)
	return id
}
