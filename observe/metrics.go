package observe

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Metrics holds the server's OpenTelemetry instruments. A nil *Metrics is
// valid and records nothing, so wiring is optional.
type Metrics struct {
	provider *sdkmetric.MeterProvider

	tokenRefreshes  metric.Int64Counter
	apiRequests     metric.Int64Counter
	toolInvocations metric.Int64Counter
}

// NewMetrics sets up a meter provider with the named exporter
// (stdout|prometheus|none) and creates the server's instruments.
func NewMetrics(ctx context.Context, serviceName, version, exporter string) (*Metrics, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	reader, err := NewMetricsReader(exporter)
	if err != nil {
		return nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	provider := sdkmetric.NewMeterProvider(opts...)
	meter := provider.Meter(serviceName)

	m := &Metrics{provider: provider}

	m.tokenRefreshes, err = meter.Int64Counter("privilegecloud.token.refreshes",
		metric.WithDescription("Token exchange attempts, by outcome"))
	if err != nil {
		return nil, err
	}
	m.apiRequests, err = meter.Int64Counter("privilegecloud.api.requests",
		metric.WithDescription("Upstream API requests, by method and status"))
	if err != nil {
		return nil, err
	}
	m.toolInvocations, err = meter.Int64Counter("privilegecloud.tool.invocations",
		metric.WithDescription("Tool invocations, by tool and outcome"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordTokenRefresh counts one token exchange attempt.
func (m *Metrics) RecordTokenRefresh(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.tokenRefreshes.Add(ctx, 1, metric.WithAttributes(outcomeAttr(err)))
}

// RecordAPIRequest counts one upstream HTTP exchange. Status 0 means the
// request never completed.
func (m *Metrics) RecordAPIRequest(ctx context.Context, method string, status int) {
	if m == nil {
		return
	}
	m.apiRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.status", strconv.Itoa(status)),
	))
}

// RecordToolInvocation counts one tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool string, err error) {
	if m == nil {
		return
	}
	m.toolInvocations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool.name", tool),
		outcomeAttr(err),
	))
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

func outcomeAttr(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("outcome", "error")
	}
	return attribute.String("outcome", "ok")
}
