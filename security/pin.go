package security

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/kbukum/sslpin/errors"
)

// PinPrefix marks an identifier as an inline SPKI SHA-256 pin.
const PinPrefix = "sha256/"

var (
	// ErrPinMismatch is returned by the handshake verifier when no certificate
	// in the verified chain matches a pinned key.
	ErrPinMismatch = errors.New("security/pin: certificate chain does not match any pinned key")
	// ErrCertificateNotFound is returned when an identifier resolves to no file.
	ErrCertificateNotFound = errors.New("security/pin: certificate not found")
	// ErrInvalidPin is returned for malformed sha256/ pins.
	ErrInvalidPin = errors.New("security/pin: invalid pin")
)

// certExtensions are tried in order when a bare certificate name is resolved.
var certExtensions = []string{".cer", ".crt", ".pem", ".der"}

// Pin is the base64-encoded SHA-256 digest of a certificate's SubjectPublicKeyInfo.
type Pin string

// String renders the pin in sha256/<base64> form.
func (p Pin) String() string { return PinPrefix + string(p) }

// SPKIPin computes the pin of cert.
func SPKIPin(cert *x509.Certificate) Pin {
	sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	return Pin(base64.StdEncoding.EncodeToString(sum[:]))
}

// ParsePin parses an inline sha256/<base64> identifier.
// ok is false when id does not carry the pin prefix.
func ParsePin(id string) (pin Pin, ok bool, err error) {
	if !strings.HasPrefix(id, PinPrefix) {
		return "", false, nil
	}
	encoded := strings.TrimPrefix(id, PinPrefix)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", true, fmt.Errorf("%w %q: %v", ErrInvalidPin, id, err)
	}
	if len(raw) != sha256.Size {
		return "", true, fmt.Errorf("%w %q: digest is %d bytes, want %d", ErrInvalidPin, id, len(raw), sha256.Size)
	}
	return Pin(encoded), true, nil
}

// PinSet is the resolved form of a trusted certificate list: the pins to
// match during the handshake plus the certificates read from files, which
// also serve as trust anchors.
type PinSet struct {
	pins    map[Pin]struct{}
	order   []Pin
	anchors []*x509.Certificate
}

// ResolvePins resolves certificate identifiers into a PinSet. Identifiers are
// inline sha256/ pins, certificate file paths, or bare names looked up in dir.
func ResolvePins(identifiers []string, dir string) (*PinSet, error) {
	set := &PinSet{pins: make(map[Pin]struct{}, len(identifiers))}
	for _, id := range identifiers {
		if strings.TrimSpace(id) == "" {
			return nil, apperrors.InvalidInput("certificates", "certificate identifier must not be blank")
		}

		pin, isPin, err := ParsePin(id)
		if err != nil {
			return nil, apperrors.CertificateLoad(id, err)
		}
		if isPin {
			set.add(pin)
			continue
		}

		path, err := resolvePath(id, dir)
		if err != nil {
			return nil, apperrors.CertificateLoad(id, err)
		}
		certs, err := LoadCertificates(path)
		if err != nil {
			return nil, apperrors.CertificateLoad(id, err)
		}
		for _, cert := range certs {
			set.add(SPKIPin(cert))
			set.anchors = append(set.anchors, cert)
		}
	}
	return set, nil
}

func (s *PinSet) add(p Pin) {
	if _, ok := s.pins[p]; ok {
		return
	}
	s.pins[p] = struct{}{}
	s.order = append(s.order, p)
}

// Len returns the number of distinct pins.
func (s *PinSet) Len() int { return len(s.order) }

// Pins returns the distinct pins in resolution order.
func (s *PinSet) Pins() []Pin {
	out := make([]Pin, len(s.order))
	copy(out, s.order)
	return out
}

// Anchors returns the certificates loaded from files.
func (s *PinSet) Anchors() []*x509.Certificate { return s.anchors }

// Contains reports whether p is pinned.
func (s *PinSet) Contains(p Pin) bool {
	_, ok := s.pins[p]
	return ok
}

// Matches reports whether any certificate in chain carries a pinned key.
func (s *PinSet) Matches(chain []*x509.Certificate) bool {
	for _, cert := range chain {
		if s.Contains(SPKIPin(cert)) {
			return true
		}
	}
	return false
}

// LoadCertificates reads every certificate from a PEM or DER file.
func LoadCertificates(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("security/pin: failed to read %s: %w", path, err)
	}

	if !strings.Contains(string(data), "-----BEGIN") {
		certs, err := x509.ParseCertificates(data)
		if err != nil {
			return nil, fmt.Errorf("security/pin: failed to parse DER certificate %s: %w", path, err)
		}
		if len(certs) == 0 {
			return nil, fmt.Errorf("security/pin: no certificate in %s", path)
		}
		return certs, nil
	}

	var certs []*x509.Certificate
	for rest := data; ; {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("security/pin: failed to parse certificate in %s: %w", path, err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("security/pin: no certificate in %s", path)
	}
	return certs, nil
}

// resolvePath maps an identifier to an existing file. Relative identifiers
// are looked up in dir first; names without an extension also try the known
// certificate extensions.
func resolvePath(id, dir string) (string, error) {
	bases := []string{id}
	if dir != "" && !filepath.IsAbs(id) {
		bases = []string{filepath.Join(dir, id), id}
	}

	candidates := make([]string, 0, len(bases)*(len(certExtensions)+1))
	for _, base := range bases {
		candidates = append(candidates, base)
		if filepath.Ext(id) == "" {
			for _, ext := range certExtensions {
				candidates = append(candidates, base+ext)
			}
		}
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrCertificateNotFound, id)
}
