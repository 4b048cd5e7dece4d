package sslpin

import (
	"github.com/kbukum/sslpin/config"
	apperrors "github.com/kbukum/sslpin/errors"
	"github.com/kbukum/sslpin/httpclient"
	"github.com/kbukum/sslpin/validation"
)

// Config configures an adapter and its default transport.
type Config struct {
	// Certificates is the trusted certificate list, in order.
	Certificates []string `yaml:"certificates" mapstructure:"certificates" validate:"required,min=1,dive,required"`
	// Transport configures the default pinned transport.
	Transport httpclient.Config `yaml:"transport" mapstructure:"transport"`
}

// ApplyDefaults fills in transport defaults.
func (c *Config) ApplyDefaults() {
	c.Transport.ApplyDefaults()
}

// Validate checks the certificate list and the transport settings.
// Failures are *errors.AppError values with per-field details.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}

	v := validation.New().
		RequiredEach("certificates", c.Certificates).
		MinDuration("transport.timeout", c.Transport.Timeout, 0).
		MinDuration("transport.tls_handshake_timeout", c.Transport.TLSHandshakeTimeout, 0)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// NewFromConfig validates cfg and builds an adapter with the default
// transport configured from cfg.Transport. Options are applied after the
// transport configuration, so WithTransport still wins.
func NewFromConfig(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		confErr := apperrors.Configuration("invalid pinning configuration").WithCause(err)
		if appErr, ok := apperrors.AsAppError(err); ok {
			confErr.WithDetails(appErr.Details)
		}
		return nil, confErr
	}
	return New(cfg.Certificates, append([]Option{WithTransportConfig(cfg.Transport)}, opts...)...)
}

// Settings is the file and environment layout read by LoadSettings:
//
//	name: payments-app
//	logging:
//	  level: info
//	pinning:
//	  certificates: [api, sha256/AAAA...]
//	  transport:
//	    cert_dir: /etc/app/certs
//	    timeout: 10s
type Settings struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Pinning              Config `yaml:"pinning" mapstructure:"pinning"`
}

// ApplyDefaults applies service and pinning defaults.
func (s *Settings) ApplyDefaults() {
	s.ServiceConfig.ApplyDefaults()
	s.Pinning.ApplyDefaults()
}

// Validate validates service and pinning settings.
func (s *Settings) Validate() error {
	if err := s.ServiceConfig.Validate(); err != nil {
		return err
	}
	return s.Pinning.Validate()
}

// LoadSettings reads config.yml, .env and the environment for serviceName.
// PINNING_CERTIFICATES=certA,certB overrides the certificate list.
func LoadSettings(serviceName string, opts ...config.LoaderOption) (*Settings, error) {
	var s Settings
	if err := config.LoadConfig(serviceName, &s, opts...); err != nil {
		return nil, err
	}
	return &s, nil
}
