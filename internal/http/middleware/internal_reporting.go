package middleware

import (
	"strconv"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
)

// InternalReporting records request counts and latencies of this service in
// reg. Routes are labelled by their pattern, so the router must be created
// with SaveMatchedRoutePath enabled; unmatched requests are labelled
// "unmatched". Scrapes and health checks are not recorded.
func InternalReporting(reg prometheus.Registerer) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelmetrics",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served.",
		},
		[]string{"route", "method", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotelmetrics",
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
		},
		[]string{"route", "method"},
	)
	reg.MustRegister(requests, duration)

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)

			path := string(ctx.Path())
			if path == "/metrics" || path == "/healthz" {
				return
			}

			route, _ := ctx.UserValue(router.MatchedRoutePathParam).(string)
			if route == "" {
				route = "unmatched"
			}
			method := string(ctx.Method())
			requests.WithLabelValues(route, method, strconv.Itoa(ctx.Response.StatusCode())).Inc()
			duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		}
	}
}
