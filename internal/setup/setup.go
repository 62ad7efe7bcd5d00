// Package setup bootstraps the application dependencies shared by the bot
// and worker binaries. All state lives on the App object constructed here;
// nothing is held in package-level globals.
package setup

import (
	"context"

	"github.com/redis/rueidis"
	"github.com/vigilo-bot/vigilo/internal/database"
	"github.com/vigilo-bot/vigilo/internal/redis"
	"github.com/vigilo-bot/vigilo/internal/setup/config"
	"github.com/vigilo-bot/vigilo/internal/setup/telemetry"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and
// cleanup.
type App struct {
	Config       *config.Config  // Application configuration
	Logger       *zap.Logger     // Main application logger
	DBLogger     *zap.Logger     // Database-specific logger
	DB           database.Client // Database connection pool
	RedisManager *redis.Manager  // Redis connection manager
	StatusClient rueidis.Client  // Redis client for worker status reporting

	telemetryEnabled bool
}

// InitializeApp bootstraps all application dependencies in the correct
// order, ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, logDir string) (*App, error) {
	// Load app configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Telemetry export starts before logging so the loggers can forward
	// error entries to it
	telemetryEnabled := telemetry.Setup(&cfg.Telemetry)

	logger, dbLogger, err := GetLoggers(logDir, cfg.Debug.LogLevel, cfg.Debug.MaxLogsToKeep, telemetryEnabled)
	if err != nil {
		return nil, err
	}

	// Redis manager provides connection pools for various subsystems
	redisManager := redis.NewManager(&cfg.Redis, logger)

	// Initialize database with migration check
	db, err := database.NewConnection(ctx, &cfg.PostgreSQL, dbLogger.Named("database"), true)
	if err != nil {
		return nil, err
	}

	// Get Redis client for worker status reporting
	statusClient, err := redisManager.GetClient(redis.WorkerStatusDBIndex)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:           cfg,
		Logger:           logger,
		DBLogger:         dbLogger,
		DB:               db,
		RedisManager:     redisManager,
		StatusClient:     statusClient,
		telemetryEnabled: telemetryEnabled,
	}, nil
}

// Cleanup closes connections and flushes loggers in reverse initialization
// order.
func (a *App) Cleanup(ctx context.Context) {
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	a.RedisManager.Close()

	if a.telemetryEnabled {
		telemetry.Shutdown(ctx, a.Logger)
	}

	_ = a.Logger.Sync()
	_ = a.DBLogger.Sync()
}
