// Package provider defines the request-response capability shape shared by
// transports, plus composable middleware for logging, tracing and metrics.
//
// A RequestResponse[I, O] takes one input and returns one output. The pinned
// HTTPS transport implements RequestResponse[httpclient.Request, *httpclient.Response];
// tests substitute it with Func.
//
// # Middleware
//
// Middleware[I, O] wraps a RequestResponse. Use Chain to compose several:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics),
//	    provider.WithTracing[In, Out]("my-service"),
//	)(rawProvider)
package provider
