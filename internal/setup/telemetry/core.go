package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"
)

// Core is a zapcore.Core that forwards error-level log entries to
// OpenTelemetry as spans, so failures show up in traces alongside the
// queries and requests that caused them.
type Core struct {
	zapcore.LevelEnabler
	tracer trace.Tracer
	fields []zapcore.Field
}

// NewCore creates a telemetry core that forwards entries at or above the
// given level.
func NewCore(enabler zapcore.LevelEnabler) *Core {
	return &Core{
		LevelEnabler: enabler,
		tracer:       otel.Tracer("logs"),
	}
}

// With adds structured context to the core.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(clone.fields[:len(clone.fields):len(clone.fields)], fields...)
	return &clone
}

// Check determines whether the entry should be logged by this core.
func (c *Core) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) && entry.Level >= zapcore.ErrorLevel {
		return checked.AddCore(entry, c)
	}
	return checked
}

// Write forwards the entry to OpenTelemetry as a short span named after the
// subsystem that produced it.
func (c *Core) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	_, span := c.tracer.Start(context.Background(), "error."+errorCategory(entry.Caller.Function))
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("error.message", entry.Message),
		attribute.String("error.level", entry.Level.String()),
		attribute.String("error.caller", entry.Caller.TrimmedPath()),
	}
	for _, field := range append(c.fields, fields...) {
		if field.Type == zapcore.StringType {
			attrs = append(attrs, attribute.String(field.Key, field.String))
		}
	}
	span.SetAttributes(attrs...)

	return nil
}

// Sync is a no-op; spans are exported by the OpenTelemetry SDK.
func (c *Core) Sync() error { return nil }

// errorCategory maps the calling function to a coarse subsystem name used in
// span names.
func errorCategory(function string) string {
	switch {
	case strings.Contains(function, "database"):
		return "database"
	case strings.Contains(function, "redis"):
		return "redis"
	case strings.Contains(function, "bot"):
		return "bot"
	case strings.Contains(function, "worker"):
		return "worker"
	case strings.Contains(function, "tracker"):
		return "tracker"
	case strings.Contains(function, "setup"):
		return "setup"
	default:
		return "application"
	}
}
