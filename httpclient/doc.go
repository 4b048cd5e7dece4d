// Package httpclient is the default pinned-transport capability: it performs
// one HTTPS request per call, accepting only servers whose verified chain
// contains a pinned key.
//
// The transport receives the trusted certificate list with every request and
// keeps one *http.Client per distinct list, so callers holding different pin
// sets can share a Transport.
//
// # Basic Usage
//
//	t, err := httpclient.New(httpclient.Config{CertDir: "/etc/app/certs"})
//
//	resp, err := t.Execute(ctx, httpclient.Request{
//	    URL:          "https://api.example.com/users/123",
//	    Method:       http.MethodGet,
//	    Certificates: []string{"api"},
//	    Timeout:      10 * time.Second,
//	})
//
// Non-2xx responses are returned together with a classified *Error.
package httpclient
