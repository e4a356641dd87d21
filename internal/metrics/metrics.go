package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "stackhook"
	subsystem = "engine"
)

var (
	registerOnce sync.Once

	dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dispatch_total",
			Help:      "Resource dispatches grouped by kind and result.",
		},
		[]string{"kind", "result"},
	)
	dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dispatch_duration_seconds",
			Help:      "Latency of a single dispatch, including synchronous start actions.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"kind"},
	)
	batchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batches_total",
			Help:      "Deploy batches grouped by addressing mode and envelope result.",
		},
		[]string{"mode", "result"},
	)
	batchOutcomes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batch_outcomes",
			Help:      "Number of outcome entries per deploy batch.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"mode"},
	)
	relayTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "build_relay_total",
			Help:      "Build jobs relayed from the queue to the execution engine.",
		},
		[]string{"result"},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests grouped by route and status code.",
		},
		[]string{"method", "route", "code"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	Register()
}

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			dispatchTotal,
			dispatchDuration,
			batchTotal,
			batchOutcomes,
			relayTotal,
			httpRequestsTotal,
			httpRequestDuration,
		)
	})
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

func ObserveDispatch(kind string, err error, duration time.Duration) {
	dispatchTotal.WithLabelValues(kind, resultLabel(err == nil)).Inc()
	dispatchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveBatch records one deploy batch; mode is "uuid" or "tag".
func ObserveBatch(mode string, success bool, outcomes int) {
	batchTotal.WithLabelValues(mode, resultLabel(success)).Inc()
	batchOutcomes.WithLabelValues(mode).Observe(float64(outcomes))
}

func ObserveRelay(err error) {
	relayTotal.WithLabelValues(resultLabel(err == nil)).Inc()
}

// HTTPMiddleware records request counts and latency keyed by the matched
// chi route pattern.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
