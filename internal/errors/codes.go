// Package errors provides structured error handling for the engine.
package errors

// Code is a machine-readable error code.
type Code string

// The simulation core never raises: readers re-initialize malformed state
// and reference lookups default. Coded errors come from storage and the
// binaries' configuration surface.
const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// World errors
	CodeWorldRequired  Code = "WORLD_REQUIRED"
	CodeWorldNameEmpty Code = "WORLD_NAME_EMPTY"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Reference data errors
	CodeSeverityIndexInvalid Code = "SEVERITY_INDEX_INVALID"

	// Configuration errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)
