// Package entities contains domain entities used across the application.
package entities

// Flags is the startup configuration handed to the host once. It has no fields.
type Flags struct{}

// Env is the execution context the host passes to the startup and readiness hooks.
type Env struct {
	Name   string            // application environment (local, dev, production)
	Values map[string]string // host-provided values, never interpreted
}
