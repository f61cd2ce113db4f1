package testutil

import (
	"net/http"

	"odyssey/pkg/requestcontext"
)

// WithActor adds an acting principal to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithActor(req *http.Request, actor string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestID adds a correlation ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
