package provider

import (
	"context"
	"time"

	"github.com/kbukum/sslpin/observability"
)

// WithMetrics feeds the sslpin.request.* and sslpin.error.total instruments
// for every round trip of the wrapped transport. Pin failures per host are
// recorded by the adapter, which knows the target URL.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metricsRR[I, O]{inner: inner, metrics: metrics}
	}
}

type metricsRR[I, O any] struct {
	inner   RequestResponse[I, O]
	metrics *observability.Metrics
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Close(ctx context.Context) error { return Close(ctx, m.inner) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	m.metrics.RecordRequestStart(ctx)
	start := time.Now()
	output, err := m.inner.Execute(ctx, input)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		m.metrics.RecordError(ctx, "execute", m.inner.Name())
	}
	m.metrics.RecordRequestEnd(ctx, m.inner.Name(), "execute", status, duration)

	return output, err
}
