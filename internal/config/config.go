package config

import (
	"os"
)

// Config holds the run configuration loaded from the environment. Command
// line flags take precedence over these values.
type Config struct {
	Format   string
	Output   string
	Snapshot string
	Platform string
}

// Load loads the configuration from environment variables or defaults
func Load() *Config {
	return &Config{
		Format:   getEnv("UNISBOM_FORMAT", "text"),
		Output:   getEnv("UNISBOM_OUTPUT", ""),
		Snapshot: getEnv("UNISBOM_SNAPSHOT", ""),
		Platform: getEnv("UNISBOM_PLATFORM", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
