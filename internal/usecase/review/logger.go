package review

import "context"

// Logger provides structured logging for the review use case.
// This interface lets the assembler report skipped diagnostics with
// structured fields without binding to a concrete logging backend.
type Logger interface {
	// LogWarning logs a warning message with structured fields.
	LogWarning(ctx context.Context, message string, fields map[string]interface{})

	// LogInfo logs an informational message with structured fields.
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}
