// Package sslpin issues certificate-pinned HTTPS requests.
//
// An Adapter holds an immutable list of trusted certificate identifiers and
// turns a RequestConfig into one call on a pinned transport. Every call
// resolves to an Outcome that is either a *Response or an *Error; only
// programmer mistakes (a missing URL, an unknown method) are returned as a
// plain error.
//
// # Basic Usage
//
//	a, err := sslpin.New([]string{"api"}, sslpin.WithTransportConfig(httpclient.Config{
//	    CertDir: "/etc/app/certs",
//	}))
//
//	out, err := a.Send(ctx, sslpin.RequestConfig{
//	    BaseURL: "https://api.example.com",
//	    URL:     "/users",
//	    Params:  url.Values{"page": {"2"}},
//	    Timeout: 5 * time.Second,
//	}, sslpin.MethodGet, nil)
//	if err != nil {
//	    return err // missing URL or unknown method
//	}
//
//	switch o := out.(type) {
//	case *sslpin.Response:
//	    users, err := sslpin.Decode[[]User](o)
//	case *sslpin.Error:
//	    if httpclient.IsPinMismatch(o) { ... }
//	}
//
// # Certificate identifiers
//
// The default transport understands three forms: an SPKI pin
// ("sha256/<base64>"), a certificate file path, or a bare name looked up in
// httpclient.Config.CertDir with the extensions .cer, .crt, .pem and .der.
package sslpin
