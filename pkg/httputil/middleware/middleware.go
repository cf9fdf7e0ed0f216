package middleware

import (
	"net/http"
)

// Middleware wraps an http.RoundTripper to modify or observe outgoing requests.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain applies one or more middleware functions to a round tripper in the order they were provided.
// The first middleware in the list will be the outermost wrapper (executed first).
// A nil rt is replaced by http.DefaultTransport.
func Chain(rt http.RoundTripper, middlewares ...Middleware) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		rt = middlewares[i](rt)
	}
	return rt
}
