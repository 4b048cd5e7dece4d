package httpclient

import "time"

// Request is the option set of a single pinned call.
type Request struct {
	// URL is the fully built request URL, query string included.
	URL string
	// Method is the HTTP method. Empty means GET.
	Method string
	// Headers are sent as-is.
	Headers map[string]string
	// Body is the serialized request body. Nil means no body.
	Body []byte
	// Timeout bounds the whole call. Zero falls back to Config.Timeout.
	Timeout time.Duration
	// Certificates are the trusted certificate identifiers for this call.
	Certificates []string
}

// HasBody reports whether the request carries a body.
func (r Request) HasBody() bool {
	return r.Body != nil
}

// Response is the raw result of a pinned call.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers, first value per key.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
	// URL is the final request URL.
	URL string
	// Protocol is the negotiated protocol, e.g. "HTTP/2.0".
	Protocol string
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}
