package config

import (
	"github.com/google/uuid"
	"os"
	"strconv"
)

type Config struct {
	ServerID      string
	ServerPort    int
	NotesDir      string // where notes are stored as .md files
	RulesPath     string // gitleaks ruleset for secret screening
	Endpoint      string // full URL the smoke client posts to
	ServerName    string
	ServerVersion string
}

func NewConfig() *Config {
	return &Config{
		ServerID:      uuid.NewString(),
		ServerPort:    getEnvAsInt("SERVER_PORT", 3000),
		NotesDir:      getEnv("NOTES_DIR", "./notes"),
		RulesPath:     getEnv("RULES_PATH", "internal/detection/gitleaks.toml"),
		Endpoint:      getEnv("MCPNOTES_ENDPOINT", "http://localhost:3000/mcp"),
		ServerName:    "mcpnotes",
		ServerVersion: "0.1.0",
	}
}

// Helper function to read environment variables with defaults
func getEnvAsInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
