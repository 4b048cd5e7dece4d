package sslpin

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/sslpin/component"
	"github.com/kbukum/sslpin/logger"
)

// Component manages an Adapter's lifecycle.
type Component struct {
	cfg  Config
	opts []Option
	log  *logger.Logger

	mu      sync.RWMutex
	adapter *Adapter
}

// ensure Component implements component.Component and component.Describable.
var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component that builds its adapter on Start.
func NewComponent(cfg Config, opts ...Option) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg:  cfg,
		opts: opts,
		log:  logger.Get("sslpin"),
	}
}

// Name returns the component name.
func (c *Component) Name() string {
	return c.cfg.Transport.Name
}

// Start builds the adapter. Starting twice is a no-op.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.adapter != nil {
		return nil
	}

	a, err := NewFromConfig(c.cfg, c.opts...)
	if err != nil {
		return err
	}
	c.adapter = a
	c.log.Info("pinned adapter started", logger.Fields(
		logger.FieldComponent, c.Name(),
		"certificates", len(c.cfg.Certificates),
	))
	return nil
}

// Stop closes idle transport connections and drops the adapter.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.adapter == nil {
		return nil
	}
	err := c.adapter.Close(ctx)
	c.adapter = nil
	c.log.Info("pinned adapter stopped", logger.Fields(logger.FieldComponent, c.Name()))
	return err
}

// Health reports healthy once started and while the transport accepts requests.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.RLock()
	a := c.adapter
	c.mu.RUnlock()

	h := component.Health{Name: c.Name()}
	switch {
	case a == nil:
		h.Status, h.Message = component.StatusUnhealthy, "not started"
	case !a.transport.IsAvailable(ctx):
		h.Status, h.Message = component.StatusUnhealthy, "transport unavailable"
	default:
		h.Status = component.StatusHealthy
	}
	return h
}

// Describe returns a summary for startup output.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name: "Pinned HTTPS",
		Type: "https-client",
		Details: fmt.Sprintf("pins=%d timeout=%s http2=%t",
			len(c.cfg.Certificates), c.cfg.Transport.Timeout, !c.cfg.Transport.DisableHTTP2),
	}
}

// Adapter returns the running adapter, or nil before Start.
func (c *Component) Adapter() *Adapter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adapter
}
