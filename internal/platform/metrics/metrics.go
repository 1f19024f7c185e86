// Package metrics exposes HTTP server metrics through an OpenTelemetry
// MeterProvider backed by a Prometheus exporter.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "account_backend"

// Metrics owns the meter provider and the HTTP instruments.
// Each instance registers into its own Prometheus registry, so several can
// coexist in one process (tests).
type Metrics struct {
	provider *sdkmetric.MeterProvider
	registry *promclient.Registry

	requests metric.Int64Counter
	duration metric.Float64Histogram
	logins   metric.Int64Counter
}

// New creates the exporter, provider and instruments.
func New() (*Metrics, error) {
	registry := promclient.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(meterName)

	m := &Metrics{provider: provider, registry: registry}

	m.requests, err = meter.Int64Counter(
		"http_server_requests",
		metric.WithDescription("Total number of HTTP requests completed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("http_server_requests: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		"http_server_request_duration",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("http_server_request_duration: %w", err)
	}

	m.logins, err = meter.Int64Counter(
		"account_logins",
		metric.WithDescription("Login attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("account_logins: %w", err)
	}

	return m, nil
}

// Middleware records a counter and a latency histogram per route and status.
// The route template (c.FullPath) is used instead of the raw path to keep
// label cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.String("status", strconv.Itoa(c.Writer.Status())),
		)
		ctx := c.Request.Context()
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

// LoginOutcome records a login attempt. outcome is "success" or "failure".
func (m *Metrics) LoginOutcome(ctx context.Context, outcome string) {
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Handler serves the Prometheus exposition format for this instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
