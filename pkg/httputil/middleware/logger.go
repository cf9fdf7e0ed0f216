package middleware

import (
	"net/http"
	"time"

	"github.com/edgeflare/pgrest/pkg/httputil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoggerOptions defines configuration for the logger middleware.
type LoggerOptions struct {
	Logger *zap.Logger
	Format func(reqID string, r *http.Request, resp *http.Response, err error, latency time.Duration) []zap.Field
}

var defaultLogger *zap.Logger

func init() {
	var err error
	defaultLogger, err = zap.NewProduction()
	if err != nil {
		panic(err)
	}
}

func defaultFormat(reqID string, r *http.Request, resp *http.Response, err error, latency time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.String("req_id", reqID),
		zap.String("method", r.Method),
		zap.String("host", r.URL.Host),
		zap.String("url", r.URL.String()),
		zap.Duration("latency", latency),
	}
	if profile := r.Header.Get("Accept-Profile") + r.Header.Get("Content-Profile"); profile != "" {
		fields = append(fields, zap.String("schema", profile))
	}
	if resp != nil {
		fields = append(fields, zap.Int("status", resp.StatusCode))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	return fields
}

// LoggerWithOptions logs every round trip. If options is nil, a production zap
// logger is used.
func LoggerWithOptions(options *LoggerOptions) Middleware {
	if options == nil {
		options = &LoggerOptions{Logger: defaultLogger}
	}
	if options.Logger == nil {
		options.Logger = defaultLogger
	}
	if options.Format == nil {
		options.Format = defaultFormat
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			reqID, ok := httputil.RequestID(r.Context())
			if !ok {
				reqID = r.Header.Get(RequestIDHeader)
			}
			if reqID == "" {
				reqID = uuid.Nil.String()
			}

			resp, err := next.RoundTrip(r)

			fields := options.Format(reqID, r, resp, err, time.Since(start))
			switch {
			case err != nil:
				options.Logger.Error("request", fields...)
			case resp.StatusCode >= http.StatusInternalServerError:
				options.Logger.Warn("response", fields...)
			default:
				options.Logger.Info("response", fields...)
			}
			return resp, err
		})
	}
}
