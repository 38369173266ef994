package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/errors"
)

// DefaultPlotlySrc is the script source written into generated pages when no
// vendor directory provides a local copy.
const DefaultPlotlySrc = "https://cdn.plot.ly/plotly-2.30.0.min.js"

// Config represents the complete application configuration
type Config struct {
	Data   DataConfig
	Site   SiteConfig
	Server ServerConfig
	Debug  bool
}

// DataConfig holds dataset input settings
type DataConfig struct {
	// Dir is the directory holding the processed CSV files. Empty means the
	// datasets embedded in the binary.
	Dir string
}

// SiteConfig holds static site generation settings
type SiteConfig struct {
	OutputDir string
	PlotlySrc string
	VendorDir string
	Workers   int
}

// ServerConfig holds preview server settings
type ServerConfig struct {
	ListenAddr      string
	GinMode         string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:   *loadDataConfig(),
		Site:   *loadSiteConfig(),
		Server: *loadServerConfig(),
		Debug:  getEnvBoolOrDefault("SELLOS_DEBUG", false),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Dir: getEnvOrDefault("SELLOS_DATA_DIR", ""),
	}
}

func loadSiteConfig() *SiteConfig {
	return &SiteConfig{
		OutputDir: getEnvOrDefault("SELLOS_OUTPUT_DIR", "public"),
		PlotlySrc: getEnvOrDefault("SELLOS_PLOTLY_SRC", DefaultPlotlySrc),
		VendorDir: getEnvOrDefault("SELLOS_VENDOR_DIR", ""),
		Workers:   getEnvIntOrDefault("SELLOS_BUILD_WORKERS", 4),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		ListenAddr:      getEnvOrDefault("SELLOS_LISTEN_ADDR", ":8080"),
		GinMode:         getEnvOrDefault("SELLOS_GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SELLOS_SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

func validateConfig(config *Config) error {
	if config.Site.OutputDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if config.Site.Workers < 1 {
		return errors.ConfigInvalid("build workers must be at least 1")
	}
	if config.Site.PlotlySrc == "" && config.Site.VendorDir == "" {
		return errors.ConfigInvalid("a plotly source or vendor directory is required")
	}
	if !strings.Contains(config.Server.ListenAddr, ":") {
		return errors.ConfigInvalid("listen address must be host:port or :port")
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
