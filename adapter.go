package sslpin

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/sslpin/errors"
	"github.com/kbukum/sslpin/httpclient"
	"github.com/kbukum/sslpin/logger"
	"github.com/kbukum/sslpin/observability"
	"github.com/kbukum/sslpin/provider"
)

// Transport is the pinned-transport capability the adapter delegates to.
// *httpclient.Transport is the default implementation.
type Transport = provider.RequestResponse[httpclient.Request, *httpclient.Response]

// Middleware wraps a Transport.
type Middleware = provider.Middleware[httpclient.Request, *httpclient.Response]

// Adapter sends pinned requests against a fixed certificate list.
// It is safe for concurrent use.
type Adapter struct {
	certs     []string
	transport Transport
	log       *logger.Logger
	metrics   *observability.Metrics
}

type options struct {
	transport       Transport
	transportConfig httpclient.Config
	log             *logger.Logger
	metrics         *observability.Metrics
	middleware      []Middleware
}

// Option configures an Adapter.
type Option func(*options)

// WithTransport replaces the default pinned transport.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithTransportConfig configures the default pinned transport.
// Ignored when WithTransport is used.
func WithTransportConfig(cfg httpclient.Config) Option {
	return func(o *options) { o.transportConfig = cfg }
}

// WithLogger sets the adapter logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics records failure counters for every Error outcome.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithMiddleware wraps the transport. The first middleware is outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mw...) }
}

// New creates an adapter trusting certs. The list must be non-empty and
// contain no blank entries. It is copied, so later changes by the caller
// have no effect.
func New(certs []string, opts ...Option) (*Adapter, error) {
	if len(certs) == 0 {
		return nil, apperrors.Configuration("at least one trusted certificate is required for pinned requests")
	}
	for i, c := range certs {
		if strings.TrimSpace(c) == "" {
			return nil, apperrors.Configuration("trusted certificate identifiers must not be blank").
				WithDetail("index", i)
		}
	}

	o := options{log: logger.Get("sslpin")}
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.transport
	if transport == nil {
		t, err := httpclient.New(o.transportConfig, httpclient.WithLogger(o.log))
		if err != nil {
			return nil, apperrors.Configuration("invalid transport configuration").WithCause(err)
		}
		transport = t
	}
	if len(o.middleware) > 0 {
		transport = provider.Chain(o.middleware...)(transport)
	}

	return &Adapter{
		certs:     append([]string(nil), certs...),
		transport: transport,
		log:       o.log,
		metrics:   o.metrics,
	}, nil
}

// Certificates returns a copy of the trusted certificate list.
func (a *Adapter) Certificates() []string {
	return append([]string(nil), a.certs...)
}

// Transport returns the (possibly wrapped) transport.
func (a *Adapter) Transport() Transport {
	return a.transport
}

// Send performs one pinned call.
//
// A missing URL or an unsupported method is returned as an *errors.AppError
// before the transport is touched. Everything that goes wrong afterwards,
// including a body that cannot be serialized, is reported as an *Error
// outcome with a nil error.
func (a *Adapter) Send(ctx context.Context, cfg RequestConfig, method Method, body any) (Outcome, error) {
	if cfg.URL == "" {
		return nil, apperrors.MissingField("url")
	}
	if !method.Valid() {
		return nil, apperrors.InvalidInput("method", fmt.Sprintf("unsupported method %d", int(method)))
	}

	id := uuid.NewString()
	target := cfg.FullURL()

	ctx, span := observability.StartSpan(ctx, observability.SpanPinnedRequest)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrRequestID, id)
	observability.SetSpanAttribute(ctx, observability.AttrHTTPMethod, methodOrDefault(method))
	observability.SetSpanAttribute(ctx, observability.AttrHTTPURL, redact(target))
	observability.SetSpanAttribute(ctx, observability.AttrPinCount, len(a.certs))

	start := time.Now()
	raw, err := a.execute(ctx, cfg, target, method, body)
	if err != nil {
		a.recordFailure(ctx, id, target, method, err, time.Since(start))
		return &Error{ID: id, Err: err, Config: cfg}, nil
	}

	status := 0
	if raw != nil {
		status = raw.StatusCode
	}
	observability.SetSpanAttribute(ctx, observability.AttrHTTPStatus, status)
	observability.SetSpanAttribute(ctx, observability.AttrOutcome, "response")
	a.log.Debug("pinned request completed", logger.Fields(
		logger.FieldRequestID, id,
		logger.FieldMethod, methodOrDefault(method),
		logger.FieldURL, redact(target),
		logger.FieldStatus, status,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return &Response{ID: id, Raw: raw, Config: cfg}, nil
}

// Close releases transport resources when the transport supports it.
func (a *Adapter) Close(ctx context.Context) error {
	return provider.Close(ctx, a.transport)
}

func (a *Adapter) execute(ctx context.Context, cfg RequestConfig, target string, method Method, body any) (*httpclient.Response, error) {
	var payload []byte
	if !absent(body) {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.InvalidFormat("body", "JSON-serializable value").WithCause(err)
		}
		payload = b
	}

	return a.transport.Execute(ctx, httpclient.Request{
		URL:          target,
		Method:       method.String(),
		Headers:      cfg.Headers.Resolve(method),
		Body:         payload,
		Timeout:      cfg.Timeout,
		Certificates: a.Certificates(),
	})
}

func (a *Adapter) recordFailure(ctx context.Context, id, target string, method Method, err error, elapsed time.Duration) {
	code := (&Error{Err: err}).Code()

	observability.SetSpanError(ctx, err)
	observability.SetSpanAttribute(ctx, observability.AttrOutcome, "error")
	a.log.Warn("pinned request failed", logger.Fields(
		logger.FieldRequestID, id,
		logger.FieldMethod, methodOrDefault(method),
		logger.FieldURL, redact(target),
		logger.FieldError, err.Error(),
		"code", code,
		logger.FieldDuration, elapsed.Milliseconds(),
	))

	if a.metrics == nil {
		return
	}
	a.metrics.RecordError(ctx, code, a.transport.Name())
	if httpclient.IsPinMismatch(err) {
		a.metrics.RecordPinFailure(ctx, hostOf(target))
	}
}

// absent reports whether body means "no body": nil, or a nil pointer,
// map, slice or interface.
func absent(body any) bool {
	if body == nil {
		return true
	}
	v := reflect.ValueOf(body)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func methodOrDefault(m Method) string {
	if m == MethodNone {
		return "GET"
	}
	return m.String()
}

// redact drops the query string so parameters never reach logs or spans.
func redact(target string) string {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		return target[:i]
	}
	return target
}

func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// IsTransportError reports whether err came from the pinned transport
// rather than from request preparation.
func IsTransportError(err error) bool {
	var transportErr *httpclient.Error
	return stderrors.As(err, &transportErr)
}
