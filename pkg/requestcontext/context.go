// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values and services consume them. Keeping the package
// free of net/http lets services read the caller principal without pulling in
// transport code, and lets tests inject values directly:
//
//	ctx = requestcontext.WithCaller(ctx, "donor-1")
//	caller := requestcontext.Caller(ctx)
package requestcontext

import (
	"context"

	id "patrolfund/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	callerKey    struct{}
	requestIDKey struct{}
)

// Caller retrieves the authenticated caller principal from the context. It is
// the ambient caller identity every core operation runs under. Returns the
// zero principal if not set.
func Caller(ctx context.Context) id.Principal {
	if p, ok := ctx.Value(callerKey{}).(id.Principal); ok {
		return p
	}
	return ""
}

// WithCaller injects a caller principal into the context.
func WithCaller(ctx context.Context, caller id.Principal) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// RequestID retrieves the request correlation id from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request correlation id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}
