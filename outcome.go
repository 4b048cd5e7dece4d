package sslpin

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	apperrors "github.com/kbukum/sslpin/errors"
	"github.com/kbukum/sslpin/httpclient"
)

// Outcome is the result of Send: either a *Response or an *Error.
// The set is closed; switch on the concrete type or use Match.
type Outcome interface {
	// RequestID is the per-call identifier used in logs and spans.
	RequestID() string
	// Request returns the request description the call was made with.
	Request() RequestConfig

	outcome()
}

// Response is a successful pinned call.
type Response struct {
	ID     string
	Raw    *httpclient.Response
	Config RequestConfig
}

func (r *Response) RequestID() string      { return r.ID }
func (r *Response) Request() RequestConfig { return r.Config }
func (*Response) outcome()                 {}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int {
	if r.Raw == nil {
		return 0
	}
	return r.Raw.StatusCode
}

// Header returns the first value of a response header, matched case-insensitively.
func (r *Response) Header(key string) string {
	if r.Raw == nil {
		return ""
	}
	if v, ok := r.Raw.Headers[http.CanonicalHeaderKey(key)]; ok {
		return v
	}
	return r.Raw.Headers[key]
}

// Body returns the raw response body.
func (r *Response) Body() []byte {
	if r.Raw == nil {
		return nil
	}
	return r.Raw.Body
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	body := r.Body()
	if len(body) == 0 {
		return apperrors.InvalidFormat("body", "JSON document").WithDetail("reason", "empty body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.InvalidFormat("body", "JSON document").WithCause(err)
	}
	return nil
}

// Error is a failed pinned call. Err is usually an *httpclient.Error.
type Error struct {
	ID     string
	Err    error
	Config RequestConfig
}

func (e *Error) RequestID() string      { return e.ID }
func (e *Error) Request() RequestConfig { return e.Config }
func (*Error) outcome()                 {}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("sslpin: request %s failed: %v", e.ID, e.Err)
}

// Unwrap returns the transport error.
func (e *Error) Unwrap() error { return e.Err }

// Code returns the machine-readable failure class, e.g. "pin_mismatch"
// for transport errors or "INVALID_FORMAT" for an unserializable body.
func (e *Error) Code() string {
	var transportErr *httpclient.Error
	if stderrors.As(e.Err, &transportErr) {
		return transportErr.Code.String()
	}
	if appErr, ok := apperrors.AsAppError(e.Err); ok {
		return string(appErr.Code)
	}
	return "unknown"
}

// StatusCode returns the HTTP status for non-2xx failures, 0 otherwise.
func (e *Error) StatusCode() int {
	var transportErr *httpclient.Error
	if stderrors.As(e.Err, &transportErr) {
		return transportErr.StatusCode
	}
	return 0
}

// Body returns the response body carried by a non-2xx failure.
func (e *Error) Body() []byte {
	var transportErr *httpclient.Error
	if stderrors.As(e.Err, &transportErr) {
		return transportErr.Body
	}
	return nil
}

// Retryable reports whether repeating the call may succeed.
func (e *Error) Retryable() bool {
	if httpclient.IsRetryable(e.Err) {
		return true
	}
	appErr, ok := apperrors.AsAppError(e.Err)
	return ok && appErr.Retryable
}

// Match calls onResponse or onError depending on the outcome type.
// Outcome is sealed, so the only other input is a nil outcome, which
// calls neither function and yields the zero value of T.
func Match[T any](o Outcome, onResponse func(*Response) T, onError func(*Error) T) T {
	switch v := o.(type) {
	case *Response:
		return onResponse(v)
	case *Error:
		return onError(v)
	default:
		var zero T
		return zero
	}
}

// Decode unmarshals a successful outcome's JSON body into T.
// An *Error outcome is returned as the error.
func Decode[T any](o Outcome) (T, error) {
	var out T
	switch v := o.(type) {
	case *Response:
		err := v.JSON(&out)
		return out, err
	case *Error:
		return out, v
	default:
		return out, apperrors.Internal(fmt.Errorf("sslpin: unexpected outcome %T", o))
	}
}
