package config

import (
	"os"
	"strconv"
	"strings"

	"gtdash/internal/errors"
)

// Data source kinds
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig `validate:"required"`
	Database  DatabaseConfig
	Server    ServerConfig `validate:"required"`
	Dashboard DashboardConfig
	Profiling ProfilingConfig
	LogLevel  string
}

// DataConfig selects where incidents are read from
type DataConfig struct {
	Source   string `validate:"required"`
	FilePath string
	Sheet    string
	Table    string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	GinMode string
}

// DashboardConfig holds chart computation settings
type DashboardConfig struct {
	SampleSize int
	SampleSeed int64
	CacheSize  int
}

// ProfilingConfig holds the admin/pprof listener settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load(overrides ...Override) (*Config, error) {
	config := &Config{
		Data:      *loadDataConfig(),
		Database:  *loadDatabaseConfig(),
		Server:    *loadServerConfig(),
		Dashboard: *loadDashboardConfig(),
		Profiling: *loadProfilingConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}
	for _, override := range overrides {
		override(config)
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Override adjusts a loaded configuration before it is validated
type Override func(*Config)

// WithDataFile reads incidents from path regardless of DATA_SOURCE
func WithDataFile(path string) Override {
	return func(c *Config) {
		c.Data.Source = SourceFile
		c.Data.FilePath = path
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Source:   strings.ToLower(getEnvOrDefault("DATA_SOURCE", SourceFile)),
		FilePath: getEnvOrDefault("DATA_FILE", "gtd_insight_ready.csv"),
		Sheet:    getEnvOrDefault("DATA_SHEET", ""),
		Table:    getEnvOrDefault("INCIDENT_TABLE", "gtd_incidents"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL: getEnvOrDefault("DATABASE_URL", ""),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		SampleSize: getEnvIntOrDefault("SAMPLE_SIZE", 5000),
		SampleSeed: int64(getEnvIntOrDefault("SAMPLE_SEED", 5)),
		CacheSize:  getEnvIntOrDefault("CHART_CACHE_SIZE", 128),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	switch config.Data.Source {
	case SourceFile:
		if config.Data.FilePath == "" {
			return errors.ConfigInvalid("DATA_FILE is required when DATA_SOURCE=file")
		}
	case SourcePostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
		if config.Data.Table == "" {
			return errors.ConfigInvalid("INCIDENT_TABLE is required when DATA_SOURCE=postgres")
		}
	default:
		return errors.ConfigInvalid("DATA_SOURCE must be \"file\" or \"postgres\", got " + strconv.Quote(config.Data.Source))
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Dashboard.SampleSize <= 0 {
		return errors.ConfigInvalid("SAMPLE_SIZE must be positive")
	}
	if config.Dashboard.CacheSize <= 0 {
		return errors.ConfigInvalid("CHART_CACHE_SIZE must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
