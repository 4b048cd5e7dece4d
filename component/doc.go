// Package component defines the lifecycle interfaces implemented by
// long-lived services such as the pinned request adapter.
package component
