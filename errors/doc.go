// Package errors provides the structured error type used for configuration
// and validation failures. These are programmer errors: they are returned as
// Go errors and never folded into a request outcome.
package errors
