// Package security builds pinned TLS client configurations.
//
// A trusted certificate list is resolved into a PinSet of SPKI SHA-256
// digests. Certificates read from files are also added to the root pool so
// self-signed pinned servers verify.
//
//	cfg := security.PinConfig{
//	    Pins: []string{"api", "sha256/r/mIkG3eEpVdm+u/ko/cwxzOMo1bk4TyHIlByibiA5E="},
//	    Dir:  "/etc/app/certs",
//	}
//
//	tlsConfig, err := cfg.Build()
package security
