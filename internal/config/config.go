package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the engine.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Report ReportConfig
}

// AppConfig identifies the running application.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// ReportConfig controls aggregation and summary defaults.
type ReportConfig struct {
	TrendWindowDays int
	BreakdownLimit  int
	OutputDir       string
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "ticket-insights"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
		Report: ReportConfig{
			TrendWindowDays: getEnvAsInt("REPORT_TREND_WINDOW_DAYS", 30),
			BreakdownLimit:  getEnvAsInt("REPORT_BREAKDOWN_LIMIT", 20),
			OutputDir:       getEnv("REPORT_OUTPUT_DIR", "."),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
