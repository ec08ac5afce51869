// Package observability provides structured logging, metrics and tracing
// for filter builder sessions.
//
// Logging uses slog. Metrics and tracing use OpenTelemetry and default to
// the global providers. Every feature is opt-in and has a no-op
// implementation; all log helpers accept a nil logger.
package observability

import (
	"log/slog"
	"time"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/tree"
)

// EnrichLogger adds session context to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "0190c6f0-...", "products")
//	enriched.Info("ready") // includes builder_id and schema
func EnrichLogger(logger *slog.Logger, builderID, schemaName string) *slog.Logger {
	if logger == nil {
		return nil
	}
	attrs := []any{slog.String("builder_id", builderID)}
	if schemaName != "" {
		attrs = append(attrs, slog.String("schema", schemaName))
	}
	return logger.With(attrs...)
}

// LogDispatch logs an applied action.
func LogDispatch(logger *slog.Logger, kind string, durationMs float64, groups, conditions int) {
	if logger == nil {
		return
	}
	logger.Debug("filter action applied",
		slog.String("action", kind),
		slog.Float64("duration_ms", durationMs),
		slog.Int("groups", groups),
		slog.Int("conditions", conditions),
	)
}

// LogDiagnostic logs an action the reducer ignored.
func LogDiagnostic(logger *slog.Logger, d tree.Diagnostic) {
	if logger == nil {
		return
	}
	logger.Warn("filter action ignored",
		slog.String("action", d.Action),
		slog.String("target_id", d.TargetID),
		slog.String("code", string(d.Code)),
		slog.String("reason", d.Message),
	)
}

// LogLoad logs a filter loaded from its wire form. reassigned counts the
// node ids replaced to keep ids unique.
func LogLoad(logger *slog.Logger, groups, conditions, reassigned int) {
	if logger == nil {
		return
	}
	logger.Info("filter loaded",
		slog.Int("groups", groups),
		slog.Int("conditions", conditions),
		slog.Int("reassigned_ids", reassigned),
	)
}

// LogReset logs a reset to an empty filter.
func LogReset(logger *slog.Logger, rootID string) {
	if logger == nil {
		return
	}
	logger.Info("filter reset", slog.String("root_id", rootID))
}

// LogValidation logs a validation outcome.
func LogValidation(logger *slog.Logger, valid bool, errors, warnings int) {
	if logger == nil {
		return
	}
	logger.Debug("filter validated",
		slog.Bool("valid", valid),
		slog.Int("errors", errors),
		slog.Int("warnings", warnings),
	)
}

// LogCallbackError logs a failed host callback.
func LogCallbackError(logger *slog.Logger, callback string, err error) {
	if logger == nil {
		return
	}
	logger.Error("filter callback failed",
		slog.String("callback", callback),
		slog.String("error", err.Error()),
	)
}

// LogSchemaLoaded logs a schema registered from a document.
func LogSchemaLoaded(logger *slog.Logger, name string, fields int) {
	if logger == nil {
		return
	}
	logger.Info("schema loaded",
		slog.String("schema", name),
		slog.Int("fields", fields),
	)
}

// TimedOperation starts a clock. The returned function reports the time
// elapsed since the call.
//
// Example:
//
//	elapsed := TimedOperation()
//	// ... do work ...
//	metrics.RecordDispatch(ctx, kind, elapsed(), 0)
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
