package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across corrfill.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldComponent = "component"
	FieldSymbol    = "symbol" // corrfill stage glyph (✎, ⇣, ⊔, etc.)

	// Letter domain
	FieldContract = "contract"
	FieldTemplate = "template"
	FieldOutput   = "output"
	FieldToken    = "token"
	FieldPath     = "path" // JSON Pointer into a template
	FieldStrategy = "strategy"

	// Outcome counts
	FieldLeaves     = "leaves"
	FieldResolved   = "resolved"
	FieldUnresolved = "unresolved"

	// Transport
	FieldURL    = "url"
	FieldStatus = "status"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Files
	FieldFile  = "file"
	FieldCount = "count"
)

// Context keys for propagating logging context
type contextKey string

const (
	runIDKey     contextKey = "logger_run_id"
	contractKey  contextKey = "logger_contract"
	componentKey contextKey = "logger_component"
)

// WithRunID adds a fill run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithContract adds the contract number being filled to the context
func WithContract(ctx context.Context, contract string) context.Context {
	return context.WithValue(ctx, contractKey, contract)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if contract, ok := ctx.Value(contractKey).(string); ok && contract != "" {
		fields = append(fields, FieldContract, contract)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns a logger with fields extracted from context.
// Use this to get a logger that automatically includes run_id and contract.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	client := &Client{
//	    logger: logger.ComponentLogger("cds"),
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
