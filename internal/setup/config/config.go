package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound = errors.New("could not find config file in any config path")
	ErrTokenMissing       = errors.New("discord bot token is not set")
)

// Default values applied when a config file omits a field. Defaults live
// here at the config boundary so call sites never re-apply them.
const (
	DefaultAlertThreshold = 12
	DefaultRetentionDays  = 365
	DefaultLogLevel       = "info"
	DefaultMaxLogsToKeep  = 10
	DefaultStatusPort     = 8080
)

// Config represents the entire application configuration.
type Config struct {
	Bot    BotConfig    `koanf:"bot"`
	Worker WorkerConfig `koanf:"worker"`
	Debug  Debug        `koanf:"debug"`

	PostgreSQL PostgreSQL `koanf:"postgresql"`
	Redis      Redis      `koanf:"redis"`
	Telemetry  Telemetry  `koanf:"telemetry"`
}

// BotConfig contains Discord bot specific configuration.
type BotConfig struct {
	Discord    Discord `koanf:"discord"`
	StatusPort int     `koanf:"status_port"` // Liveness endpoint port
}

// WorkerConfig contains scheduler and maintenance configuration.
type WorkerConfig struct {
	AlertPollInterval int `koanf:"alert_poll_interval"` // Debounce poll interval in minutes
	ReportSize        int `koanf:"report_size"`         // Max entries per inactivity report
	RetentionDays     int `koanf:"retention_days"`      // Purge activity rows older than this
	ScanConcurrency   int `koanf:"scan_concurrency"`    // Concurrent guild scans per tick
}

// Debug contains debug-related configuration.
type Debug struct {
	LogLevel      string `koanf:"log_level"`        // Log level (debug, info, warn, error)
	MaxLogsToKeep int    `koanf:"max_logs_to_keep"` // Maximum log sessions to keep
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	DBName       string `koanf:"db_name"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	MaxLifetime  int    `koanf:"max_lifetime"`  // Minutes
	MaxIdleTime  int    `koanf:"max_idle_time"` // Minutes
}

// Redis contains Redis connection configuration.
// Username is optional and can be empty for default authentication.
type Redis struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Telemetry contains OpenTelemetry export configuration.
// Leaving the DSN empty disables exporting entirely.
type Telemetry struct {
	UptraceDSN     string `koanf:"uptrace_dsn"`
	ServiceVersion string `koanf:"service_version"`
}

// Discord contains Discord gateway configuration.
// Token must be provided for bot authentication.
type Discord struct {
	Token string `koanf:"token"`
}

// LoadConfig loads the configuration from the first config.toml found in the
// search paths and returns it together with the directory it was loaded from.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	configPaths := []string{
		"/etc/vigilo/config",
		"/app/config",
		"/config",
		"config",
		".",
	}

	if home, err := os.UserHomeDir(); err == nil {
		configPaths = append([]string{filepath.Join(home, ".vigilo/config")}, configPaths...)
	}

	var configDir string

	for _, path := range configPaths {
		candidate := filepath.Join(path, "config.toml")
		if _, err := os.Stat(candidate); err != nil {
			continue
		}

		if err := k.Load(file.Provider(candidate), toml.Parser()); err != nil {
			return nil, "", fmt.Errorf("failed to parse config file %s: %w", candidate, err)
		}

		configDir = path

		break
	}

	if configDir == "" {
		return nil, "", ErrConfigFileNotFound
	}

	cfg := defaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment always wins for secrets so they never have to live on disk.
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Discord.Token = token
	}

	if dsn := os.Getenv("UPTRACE_DSN"); dsn != "" {
		cfg.Telemetry.UptraceDSN = dsn
	}

	if cfg.Bot.Discord.Token == "" {
		return nil, "", ErrTokenMissing
	}

	return cfg, configDir, nil
}

// defaultConfig returns a config populated with every default value.
func defaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			StatusPort: DefaultStatusPort,
		},
		Worker: WorkerConfig{
			AlertPollInterval: 10,
			ReportSize:        12,
			RetentionDays:     DefaultRetentionDays,
			ScanConcurrency:   4,
		},
		Debug: Debug{
			LogLevel:      DefaultLogLevel,
			MaxLogsToKeep: DefaultMaxLogsToKeep,
		},
		PostgreSQL: PostgreSQL{
			Host:         "127.0.0.1",
			Port:         5432,
			User:         "postgres",
			DBName:       "vigilo",
			MaxOpenConns: 10,
			MaxIdleConns: 10,
			MaxLifetime:  10,
			MaxIdleTime:  10,
		},
		Redis: Redis{
			Host: "127.0.0.1",
			Port: 6379,
		},
		Telemetry: Telemetry{
			ServiceVersion: "1.0.0",
		},
	}
}
