package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/http2"

	"github.com/kbukum/sslpin/logger"
	"github.com/kbukum/sslpin/security"
)

// ErrClosed is returned by Execute after Close.
var ErrClosed = errors.New("httpclient: transport closed")

// Transport performs pinned HTTPS requests.
// It is safe for concurrent use.
type Transport struct {
	config Config
	log    *logger.Logger

	mu      sync.Mutex
	clients map[string]*http.Client
	closed  bool
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the transport logger.
func WithLogger(l *logger.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.log = l
		}
	}
}

// New creates a new pinned transport with the given configuration.
func New(cfg Config, opts ...Option) (*Transport, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Transport{
		config:  cfg,
		log:     logger.Get("httpclient"),
		clients: make(map[string]*http.Client),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Name returns the transport name (implements provider.Provider).
func (t *Transport) Name() string {
	return t.config.Name
}

// IsAvailable reports whether the transport accepts requests (implements provider.Provider).
func (t *Transport) IsAvailable(_ context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

// Execute sends one pinned request (implements provider.RequestResponse).
// A non-2xx response is returned together with a classified *Error.
func (t *Transport) Execute(ctx context.Context, req Request) (*Response, error) {
	if req.URL == "" {
		return nil, NewValidationError("url is required")
	}
	if !strings.HasPrefix(strings.ToLower(req.URL), "https://") {
		return nil, NewValidationError(fmt.Sprintf("pinned requests require an https URL, got %q", req.URL))
	}

	client, err := t.client(req.Certificates)
	if err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = t.config.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
		URL:        httpReq.URL.String(),
		Protocol:   resp.Proto,
	}

	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}
	return result, nil
}

// Close releases idle connections and rejects further requests (implements provider.Closeable).
func (t *Transport) Close(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.clients {
		c.CloseIdleConnections()
	}
	t.clients = make(map[string]*http.Client)
	t.closed = true
	return nil
}

// GetConfig returns the transport configuration.
func (t *Transport) GetConfig() Config {
	return t.config
}

// client returns the cached client for a certificate list, building it on first use.
func (t *Transport) client(certs []string) (*http.Client, error) {
	if len(certs) == 0 {
		return nil, NewConfigurationError(errors.New("no trusted certificates supplied"))
	}
	key := strings.Join(certs, "\x00")

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, NewConnectionError(ErrClosed)
	}
	if c, ok := t.clients[key]; ok {
		return c, nil
	}

	c, err := t.buildClient(certs)
	if err != nil {
		return nil, NewConfigurationError(err)
	}
	t.clients[key] = c
	t.log.Debug("pinned client built", logger.Fields(
		logger.FieldProvider, t.config.Name,
		"certificates", len(certs),
	))
	return c, nil
}

func (t *Transport) buildClient(certs []string) (*http.Client, error) {
	pinCfg := security.PinConfig{
		Pins:            certs,
		Dir:             t.config.CertDir,
		CAFile:          t.config.CAFile,
		ServerName:      t.config.ServerName,
		MinVersion:      t.config.MinVersion,
		SkipSystemRoots: t.config.SkipSystemRoots,
	}
	tlsCfg, err := pinCfg.Build()
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       tlsCfg,
		TLSHandshakeTimeout:   t.config.TLSHandshakeTimeout,
		MaxIdleConns:          100,
		IdleConnTimeout:       defaultIdleConnTimeout,
		ExpectContinueTimeout: time.Second,
	}
	if !t.config.DisableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, fmt.Errorf("httpclient: configure http2: %w", err)
		}
	}

	return &http.Client{Transport: transport}, nil
}

// buildRequest constructs an *http.Request from the call options.
func buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.HasBody() {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
