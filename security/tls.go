package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// PinConfig describes a pinned TLS client configuration.
type PinConfig struct {
	// Pins are the trusted certificate identifiers: sha256/<base64> pins,
	// certificate file paths, or bare names resolved inside Dir.
	Pins []string `yaml:"pins" mapstructure:"pins"`

	// Dir is the directory bare certificate names are resolved in.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// CAFile is an optional PEM bundle added to the root pool. Needed when
	// only inline pins are configured and the server chain is not rooted in
	// the system trust store.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// ServerName overrides the server name used for certificate verification.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// MinVersion is the minimum TLS version (e.g., tls.VersionTLS12).
	// Defaults to TLS 1.2 if not set.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`

	// SkipSystemRoots builds the root pool from CAFile and pinned
	// certificates only.
	SkipSystemRoots bool `yaml:"skip_system_roots" mapstructure:"skip_system_roots"`
}

// Validate checks that the pin configuration is usable.
func (c *PinConfig) Validate() error {
	if c == nil || len(c.Pins) == 0 {
		return fmt.Errorf("security/tls: at least one pinned certificate is required")
	}
	return nil
}

// Build resolves the pins and creates a *tls.Config that performs normal
// chain verification followed by a pin check on the verified chains.
func (c *PinConfig) Build() (*tls.Config, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	set, err := ResolvePins(c.Pins, c.Dir)
	if err != nil {
		return nil, err
	}

	roots, err := c.rootPool(set)
	if err != nil {
		return nil, err
	}

	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}

	return &tls.Config{
		RootCAs:          roots,
		ServerName:       c.ServerName,
		MinVersion:       minVersion,
		VerifyConnection: VerifyPins(set),
	}, nil
}

// VerifyPins returns a tls.Config.VerifyConnection callback that accepts the
// connection only if a verified chain contains a pinned key.
func VerifyPins(set *PinSet) func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		for _, chain := range cs.VerifiedChains {
			if set.Matches(chain) {
				return nil
			}
		}
		return fmt.Errorf("%w (server %q)", ErrPinMismatch, cs.ServerName)
	}
}

// rootPool assembles the trust anchors for chain verification.
func (c *PinConfig) rootPool(set *PinSet) (*x509.CertPool, error) {
	var pool *x509.CertPool
	if !c.SkipSystemRoots {
		if sys, err := x509.SystemCertPool(); err == nil && sys != nil {
			pool = sys
		}
	}
	if pool == nil {
		pool = x509.NewCertPool()
	}

	if c.CAFile != "" {
		ca, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("security/tls: failed to read CA file: %w", err)
		}
		if !pool.AppendCertsFromPEM(ca) {
			return nil, fmt.Errorf("security/tls: failed to parse CA certificate")
		}
	}

	for _, cert := range set.Anchors() {
		pool.AddCert(cert)
	}
	return pool, nil
}
