// Package telemetry configures the OpenTelemetry export pipeline. Traces and
// metrics ship to Uptrace when a DSN is configured; without one the rest of
// the application runs with the instrumentation inert.
package telemetry

import (
	"context"

	"github.com/uptrace/uptrace-go/uptrace"
	"github.com/vigilo-bot/vigilo/internal/setup/config"
	"go.uber.org/zap"
)

// Setup configures the OpenTelemetry exporters. Returns false when no DSN is
// configured, in which case nothing is exported and Shutdown must not be
// called.
func Setup(cfg *config.Telemetry) bool {
	if cfg.UptraceDSN == "" {
		return false
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName("vigilo"),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
	)

	return true
}

// Shutdown flushes and stops the exporters.
func Shutdown(ctx context.Context, logger *zap.Logger) {
	if err := uptrace.Shutdown(ctx); err != nil {
		logger.Error("Failed to shut down telemetry", zap.Error(err))
	}
}
