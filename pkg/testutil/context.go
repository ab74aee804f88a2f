package testutil

import (
	"net/http"

	id "patrolfund/pkg/domain"
	"patrolfund/pkg/requestcontext"
)

// WithCaller adds a caller principal to the request context, simulating what
// the auth middleware does for authenticated requests. Invalid principals are
// silently ignored.
func WithCaller(req *http.Request, caller string) *http.Request {
	parsed, err := id.ParsePrincipal(caller)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithCaller(req.Context(), parsed))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
