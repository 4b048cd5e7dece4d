// Package observability provides OpenTelemetry tracing and metrics for
// pinned HTTPS traffic.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("payments-app"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanPinnedRequest)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("payments-app"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("payments-app"))
//	metrics.RecordRequestEnd(ctx, "pinned-https", "GET", "ok", duration)
package observability
