package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Output   OutputConfig
	Download DownloadConfig
	Database DatabaseConfig
	Logging  LoggingConfig

	// ConnectorsFile points at the YAML file describing the operators to run.
	ConnectorsFile string
}

// OutputConfig controls where the combined dataset is written.
type OutputConfig struct {
	Dir       string
	FileName  string
	VendorDir string
}

// DownloadConfig controls feed archive retrieval.
type DownloadConfig struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// DatabaseConfig is optional; when DSN is empty the Postgres sink is skipped.
type DatabaseConfig struct {
	DSN string
}

type LoggingConfig struct {
	Level    string
	FilePath string
}

func Load() (*Config, error) {
	cfg := &Config{
		Output: OutputConfig{
			Dir:       getEnv("OUTPUT_DIR", "data/outputs"),
			FileName:  getEnv("OUTPUT_FILE", "world_bus.csv"),
			VendorDir: getEnv("VENDOR_DIR", "data/vendor"),
		},
		Download: DownloadConfig{
			Timeout: getDurationEnv("DOWNLOAD_TIMEOUT", 3*time.Minute),
			Retries: getIntEnv("DOWNLOAD_RETRIES", 3),
			Backoff: getDurationEnv("DOWNLOAD_BACKOFF", 2*time.Second),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DATABASE_URL", ""),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			FilePath: getEnv("LOG_FILE", "worldtransit.log"),
		},
		ConnectorsFile: getEnv("CONNECTORS_FILE", "connectors.yml"),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
