package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/edgeflare/pgrest/pkg/metrics"
)

// Metrics records request counts and durations per method and resource.
func Metrics(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resource := resourceLabel(r.URL.Path)

		resp, err := next.RoundTrip(r)

		metrics.RequestDuration.WithLabelValues(r.Method, resource).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.RequestErrors.WithLabelValues(r.Method, resource).Inc()
			return resp, err
		}
		metrics.Requests.WithLabelValues(r.Method, resource, strconv.Itoa(resp.StatusCode)).Inc()
		return resp, nil
	})
}

// resourceLabel keeps the label set bounded to table and rpc names.
func resourceLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[len(parts)-2] == "rpc" {
		return "rpc/" + parts[len(parts)-1]
	}
	return parts[len(parts)-1]
}
