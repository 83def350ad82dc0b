// FILE: relog/src/internal/correlate/correlate.go
package correlate

import (
	"context"
	"sync"

	"github.com/petermattis/goid"
)

// idKey is the private context key for the request correlation id.
type idKey struct{}

// ambient maps goroutine id -> correlation id. It is the side-channel
// fallback for call sites that cannot thread a context through; bindings
// are installed by the request middleware for the duration of handling.
var ambient sync.Map // map[int64]string

// WithID returns a context carrying the correlation id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// FromContext extracts the correlation id from the context, if any.
// Works for plain contexts and for *fasthttp.RequestCtx, whose Value
// method delegates to its user values.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(idKey{}).(string)
	return id, ok && id != ""
}

// ValueSetter is the subset of *fasthttp.RequestCtx needed to attach an
// id to a request without importing fasthttp here.
type ValueSetter interface {
	SetUserValue(key any, value any)
}

// Attach stores the correlation id on a request so FromContext can
// recover it later.
func Attach(c ValueSetter, id string) {
	c.SetUserValue(idKey{}, id)
}

// Bind registers the correlation id for the calling goroutine. Must be
// paired with Unbind on the same goroutine.
func Bind(id string) {
	ambient.Store(goid.Get(), id)
}

// Unbind removes the calling goroutine's binding.
func Unbind() {
	ambient.Delete(goid.Get())
}

// CurrentID returns the ambient correlation id bound to the calling
// goroutine, if any.
func CurrentID() (string, bool) {
	v, ok := ambient.Load(goid.Get())
	if !ok {
		return "", false
	}
	id := v.(string)
	return id, id != ""
}

// Resolve returns the correlation id for a log call: the explicit
// context wins, the ambient binding is the fallback, absence is "".
// It never fails; startup code and background tasks simply resolve to
// the empty id.
func Resolve(ctx context.Context) string {
	if id, ok := FromContext(ctx); ok {
		return id
	}
	if id, ok := CurrentID(); ok {
		return id
	}
	return ""
}
