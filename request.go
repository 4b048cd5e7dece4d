package sslpin

import (
	"net/url"
	"strings"
	"time"
)

// Content-Type forced on every pinned request.
const (
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json;charset=UTF-8"
)

// RequestConfig describes one logical HTTP call. The adapter only reads it.
type RequestConfig struct {
	// BaseURL is concatenated with URL as-is; no separator is inserted.
	BaseURL string `json:"base_url"`
	// URL is the path part. Required.
	URL string `json:"url"`
	// Params are encoded into the query string. Nil means no query is added.
	Params url.Values `json:"params,omitempty"`
	// Headers holds default and per-method headers.
	Headers HeaderSet `json:"headers"`
	// Timeout is handed to the transport verbatim.
	Timeout time.Duration `json:"timeout"`
}

// HeaderSet holds method-agnostic headers plus per-method replacements.
type HeaderSet struct {
	Common    map[string]string            `json:"common,omitempty"`
	PerMethod map[Method]map[string]string `json:"per_method,omitempty"`
}

// Resolve returns a fresh header map for method m with Content-Type forced
// to ContentTypeJSON. When m is not MethodNone and PerMethod holds a non-nil
// map for it, that map replaces Common entirely.
func (h HeaderSet) Resolve(m Method) map[string]string {
	base := h.Common
	if m != MethodNone {
		if perMethod, ok := h.PerMethod[m]; ok && perMethod != nil {
			base = perMethod
		}
	}

	out := make(map[string]string, len(base)+1)
	for k, v := range base {
		if strings.EqualFold(k, HeaderContentType) {
			continue
		}
		out[k] = v
	}
	out[HeaderContentType] = ContentTypeJSON
	return out
}

// FullURL returns the request URL: BaseURL+URL, with Params appended when non-nil.
func (c RequestConfig) FullURL() string {
	raw := c.BaseURL + c.URL
	if c.Params == nil {
		return raw
	}
	return BuildURL(raw, c.Params)
}

// BuildURL appends the percent-encoded params to raw. Keys are sorted, an
// existing fragment is dropped, and "&" is used when raw already has a query.
// Empty params leave raw unchanged.
func BuildURL(raw string, params url.Values) string {
	encoded := params.Encode()
	if encoded == "" {
		return raw
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + encoded
}
