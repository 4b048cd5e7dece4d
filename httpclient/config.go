package httpclient

import (
	"fmt"
	"time"
)

const (
	defaultTimeout             = 30 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
	defaultIdleConnTimeout     = 90 * time.Second
	defaultName                = "pinned-https"
)

// Config configures the pinned transport.
type Config struct {
	// Name identifies the transport in logs, traces and metrics.
	Name string `yaml:"name" mapstructure:"name"`

	// Timeout applies to requests that carry no timeout of their own. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// CertDir is where bare certificate names are resolved.
	CertDir string `yaml:"cert_dir" mapstructure:"cert_dir"`

	// CAFile is an optional PEM bundle added to the root pool.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// ServerName overrides the server name used for certificate verification.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// MinVersion is the minimum TLS version. Defaults to TLS 1.2.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`

	// SkipSystemRoots restricts chain verification to CAFile and pinned certificates.
	SkipSystemRoots bool `yaml:"skip_system_roots" mapstructure:"skip_system_roots"`

	// DisableHTTP2 keeps connections on HTTP/1.1.
	DisableHTTP2 bool `yaml:"disable_http2" mapstructure:"disable_http2"`

	// TLSHandshakeTimeout bounds the handshake. Defaults to 10s.
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout" mapstructure:"tls_handshake_timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.TLSHandshakeTimeout <= 0 {
		c.TLSHandshakeTimeout = defaultTLSHandshakeTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.TLSHandshakeTimeout <= 0 {
		return fmt.Errorf("httpclient: tls_handshake_timeout must be positive")
	}
	return nil
}
