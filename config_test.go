package sslpin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/sslpin/config"
	apperrors "github.com/kbukum/sslpin/errors"
	"github.com/kbukum/sslpin/httpclient"
	"github.com/kbukum/sslpin/validation"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		field   string
	}{
		{"valid", Config{Certificates: []string{"certA"}}, false, ""},
		{"nil_certificates", Config{}, true, "certificates"},
		{"empty_certificates", Config{Certificates: []string{}}, true, "certificates"},
		{"empty_entry", Config{Certificates: []string{"certA", ""}}, true, "certificates[1]"},
		{"blank_entry", Config{Certificates: []string{" "}}, true, "certificates[0]"},
		{"negative_timeout", Config{Certificates: []string{"certA"}, Transport: httpclient.Config{Timeout: -time.Second}}, true, "transport.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected %q in %v", tt.field, err)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	a, err := NewFromConfig(Config{
		Certificates: []string{"certA", "certB"},
		Transport:    httpclient.Config{Name: "payments", Timeout: 5 * time.Second},
	})
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	defer a.Close(context.Background())

	if a.Transport().Name() != "payments" {
		t.Errorf("transport name = %q", a.Transport().Name())
	}
	tr, ok := a.Transport().(*httpclient.Transport)
	if !ok {
		t.Fatalf("expected default transport, got %T", a.Transport())
	}
	if got := tr.GetConfig(); got.Timeout != 5*time.Second || got.TLSHandshakeTimeout <= 0 {
		t.Errorf("transport config not applied: %+v", got)
	}
}

func TestNewFromConfig_Invalid(t *testing.T) {
	_, err := NewFromConfig(Config{Certificates: []string{"certA", " "}})
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected *AppError, got %v", err)
	}
	if appErr.Code != apperrors.ErrCodeConfiguration {
		t.Errorf("Code = %s, want CONFIGURATION_ERROR", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].([]validation.FieldError)
	if !ok || len(fields) != 1 || fields[0].Field != "certificates[1]" {
		t.Errorf("expected field details, got %#v", appErr.Details)
	}
	if !apperrors.HasCode(appErr.Cause, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected validation cause, got %v", appErr.Cause)
	}
}

func TestNewFromConfig_OptionsWin(t *testing.T) {
	stub := &stubTransport{}
	a, err := NewFromConfig(Config{Certificates: []string{"certA"}}, WithTransport(stub))
	if err != nil {
		t.Fatal(err)
	}
	if a.Transport() != Transport(stub) {
		t.Errorf("WithTransport should replace the configured transport, got %T", a.Transport())
	}
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeSettings(t, `
name: payments-app
environment: production
logging:
  level: warn
pinning:
  certificates: [api, backup]
  transport:
    cert_dir: /etc/app/certs
    timeout: 10s
    disable_http2: true
`)

	s, err := LoadSettings("payments-app", config.WithConfigFile(path), config.WithEnvPrefix("SSLPIN_LOAD_UNUSED"))
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Name != "payments-app" || s.Environment != "production" || s.Logging.Level != "warn" {
		t.Errorf("unexpected service settings: %+v", s.ServiceConfig)
	}
	p := s.Pinning
	if strings.Join(p.Certificates, ",") != "api,backup" {
		t.Errorf("certificates = %v", p.Certificates)
	}
	if p.Transport.CertDir != "/etc/app/certs" || p.Transport.Timeout != 10*time.Second || !p.Transport.DisableHTTP2 {
		t.Errorf("transport = %+v", p.Transport)
	}
	if p.Transport.Name != "pinned-https" || p.Transport.TLSHandshakeTimeout != 10*time.Second {
		t.Errorf("defaults not applied: %+v", p.Transport)
	}
}

func TestLoadSettings_EnvCertificates(t *testing.T) {
	path := writeSettings(t, `
name: payments-app
pinning:
  certificates: [fromfile]
`)
	t.Setenv("SSLPINAPP_PINNING_CERTIFICATES", "certA,certB")

	s, err := LoadSettings("payments-app", config.WithConfigFile(path), config.WithEnvPrefix("sslpinapp"))
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if strings.Join(s.Pinning.Certificates, ",") != "certA,certB" {
		t.Errorf("expected env override, got %v", s.Pinning.Certificates)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	path := writeSettings(t, `
name: payments-app
pinning:
  certificates: []
`)
	_, err := LoadSettings("payments-app", config.WithConfigFile(path), config.WithEnvPrefix("SSLPIN_INVALID_UNUSED"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected wrapped INVALID_INPUT, got %v", err)
	}
}
