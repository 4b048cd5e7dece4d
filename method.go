package sslpin

import (
	"fmt"
	"net/http"
	"strings"
)

// Method is an HTTP method accepted by Send.
type Method int

const (
	// MethodNone means no method was supplied. Per-method headers are
	// skipped and the transport applies its default (GET).
	MethodNone Method = iota
	MethodGet
	MethodPost
	MethodPut
	MethodDelete
)

var methodNames = map[Method]string{
	MethodGet:    http.MethodGet,
	MethodPost:   http.MethodPost,
	MethodPut:    http.MethodPut,
	MethodDelete: http.MethodDelete,
}

// String returns the upper-case HTTP method, or "" for MethodNone.
func (m Method) String() string {
	return methodNames[m]
}

// Valid reports whether m is MethodNone or one of the supported methods.
func (m Method) Valid() bool {
	if m == MethodNone {
		return true
	}
	_, ok := methodNames[m]
	return ok
}

// ParseMethod parses a method name case-insensitively. The empty string
// yields MethodNone.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return MethodNone, nil
	}
	upper := strings.ToUpper(s)
	for m, name := range methodNames {
		if name == upper {
			return m, nil
		}
	}
	return MethodNone, fmt.Errorf("sslpin: unsupported method %q", s)
}

// UnmarshalText lets methods appear as strings in config files and header maps.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("sslpin: unsupported method %d", int(m))
	}
	return []byte(m.String()), nil
}
