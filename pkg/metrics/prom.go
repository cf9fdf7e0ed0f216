package metrics

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgrest_requests_total",
			Help: "Total number of PostgREST responses by method, resource and status code",
		},
		[]string{"method", "resource", "code"},
	)

	RequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgrest_request_errors_total",
			Help: "Total number of PostgREST requests that failed without a response",
		},
		[]string{"method", "resource"},
	)

	Retries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgrest_request_retries_total",
			Help: "Total number of retried PostgREST requests by method",
		},
		[]string{"method"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pgrest_request_duration_seconds",
			Help:    "Duration of PostgREST round trips",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "resource"},
	)
)

// PromServerOpts configures the metrics server. Zero fields take defaults.
type PromServerOpts struct {
	Addr              string        // defaults to ":9100"
	Path              string        // defaults to "/metrics"
	ShutdownTimeout   time.Duration // defaults to 5s
	ReadHeaderTimeout time.Duration // defaults to 3s
	Logger            *zap.Logger
}

func (o *PromServerOpts) withDefaults() PromServerOpts {
	var opts PromServerOpts
	if o != nil {
		opts = *o
	}
	opts.Addr = cmp.Or(opts.Addr, ":9100")
	opts.Path = cmp.Or(opts.Path, "/metrics")
	opts.ShutdownTimeout = cmp.Or(opts.ShutdownTimeout, 5*time.Second)
	opts.ReadHeaderTimeout = cmp.Or(opts.ReadHeaderTimeout, 3*time.Second)
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

// StartPrometheusServer serves the default registry until ctx is canceled.
// wg is released once the listener is closed; in-flight scrapes are drained for
// up to ShutdownTimeout.
func StartPrometheusServer(ctx context.Context, wg *sync.WaitGroup, opts *PromServerOpts) {
	o := opts.withDefaults()
	log := o.Logger.With(zap.String("addr", o.Addr))

	mux := http.NewServeMux()
	mux.Handle(o.Path, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(o.Logger),
	}))
	srv := &http.Server{
		Addr:              o.Addr,
		Handler:           mux,
		ReadHeaderTimeout: o.ReadHeaderTimeout,
		ErrorLog:          zap.NewStdLog(o.Logger),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		stop := context.AfterFunc(ctx, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), o.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("metrics server shutdown", zap.Error(err))
				return
			}
			log.Info("metrics server shutdown complete")
		})
		defer stop()

		log.Info("starting metrics server", zap.String("path", o.Path))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", zap.Error(err))
		}
	}()
}
