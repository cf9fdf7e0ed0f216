package middleware

import (
	"net/http"

	"github.com/edgeflare/pgrest/pkg/httputil"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestID sets the X-Request-Id header on outgoing requests. The id is taken
// from the request context when present, otherwise a new UUID is generated.
// An existing header is left untouched.
func RequestID(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get(RequestIDHeader) != "" {
			return next.RoundTrip(r)
		}

		reqID, ok := httputil.RequestID(r.Context())
		if !ok {
			reqID = uuid.New().String()
		}

		// RoundTrippers must not modify the caller's request
		r = r.Clone(httputil.WithRequestID(r.Context(), reqID))
		r.Header.Set(RequestIDHeader, reqID)
		return next.RoundTrip(r)
	})
}
