// Package config loads service configuration from config.yml, .env files and
// the process environment using Viper.
//
// # Usage
//
//	type Settings struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Pinning sslpin.Config `yaml:"pinning" mapstructure:"pinning"`
//	}
//
//	var s Settings
//	err := config.LoadConfig("payments-app", &s)
//
// Every environment variable is bound under several nested key spellings, so
// PINNING_CERTIFICATES fills pinning.certificates and
// PINNING_TRANSPORT_CERT_DIR fills pinning.transport.cert_dir.
package config
