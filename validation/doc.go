// Package validation provides input validation for configuration structs.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both return *errors.AppError
// with per-field details.
//
// # Struct Tag Validation
//
//	type PinningConfig struct {
//	    Certificates []string `mapstructure:"certificates" validate:"required,min=1,dive,required"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.RequiredEach("certificates", cfg.Certificates)
//	v.MinDuration("timeout", cfg.Timeout, 0)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
