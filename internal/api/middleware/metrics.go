package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ArielSanroj/mommyshops-sub003/internal/api/middleware"

// Metrics holds the OpenTelemetry metrics instruments.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestTotal     metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
	responseSize     metric.Int64Histogram
}

// NewMetrics creates a new Metrics instance with initialized instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.requests_in_flight",
		metric.WithDescription("Number of HTTP requests currently being processed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("Size of HTTP server responses in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		requestsInFlight: requestsInFlight,
		responseSize:     responseSize,
	}, nil
}

// Middleware returns an HTTP middleware that records metrics for each request.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Track request in flight
			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
			}
			m.requestsInFlight.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			defer m.requestsInFlight.Add(r.Context(), -1, metric.WithAttributes(attrs...))

			rec := record(w)
			next.ServeHTTP(rec, r)

			duration := time.Since(start).Seconds()

			attrs = append(attrs, attribute.String("http.status_code", strconv.Itoa(rec.status)))
			if rec.status >= 400 {
				attrs = append(attrs, attribute.Bool("error", true))
			}

			m.requestDuration.Record(r.Context(), duration, metric.WithAttributes(attrs...))
			m.requestTotal.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			m.responseSize.Record(r.Context(), rec.bytes, metric.WithAttributes(attrs...))
		})
	}
}

// BreakerMetrics holds metrics for circuit breaker state transitions.
type BreakerMetrics struct {
	transitions metric.Int64Counter
	openTotal   metric.Int64Counter
}

// NewBreakerMetrics creates metrics for monitoring circuit breaker behaviour.
func NewBreakerMetrics() (*BreakerMetrics, error) {
	meter := otel.Meter(meterName)

	transitions, err := meter.Int64Counter(
		"resilience.breaker.transition.total",
		metric.WithDescription("Total number of circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	openTotal, err := meter.Int64Counter(
		"resilience.breaker.open.total",
		metric.WithDescription("Total number of times a circuit breaker opened"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return &BreakerMetrics{
		transitions: transitions,
		openTotal:   openTotal,
	}, nil
}

// RecordTransition records a circuit breaker state transition.
// State change notifications fire outside any request scope, so a
// background context is used.
func (m *BreakerMetrics) RecordTransition(operation, from, to string) {
	attrs := []attribute.KeyValue{
		attribute.String("breaker.operation", operation),
		attribute.String("breaker.from", from),
		attribute.String("breaker.to", to),
	}

	ctx := context.TODO()
	m.transitions.Add(ctx, 1, metric.WithAttributes(attrs...))
	if to == "open" {
		m.openTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("breaker.operation", operation),
		))
	}
}
