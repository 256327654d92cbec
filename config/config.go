// Package config provides centralized configuration for the tablestore server.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backup compression modes.
const (
	CompressionNone = "none"
	CompressionXZ   = "xz"
)

// Config holds all application configuration values.
type Config struct {
	Port              string   // HTTP server port (e.g., ":8080")
	DataDir           string   // Directory holding one {name}.sqlite file per database
	BackupDir         string   // Directory holding backup artifacts
	Driver            string   // database/sql driver name: sqlite3, sqlite or libsql
	BackupCompression string   // "none" or "xz"
	MaxRequestBody    int64    // Maximum request body size in bytes
	RequestTimeout    int      // Request timeout in seconds
	LogLevel          string   // debug, info, warn or error
	CORSOrigins       []string // Allowed CORS origins (empty allows none, "*" allows all)
}

// Cfg is the global configuration instance, loaded at startup.
var Cfg Config

func init() {
	// Load .env file before reading config (ignore error if file doesn't exist)
	godotenv.Load()
	Cfg = Load()
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	requestTimeout := 30
	if val := os.Getenv("REQUEST_TIMEOUT"); val != "" {
		if t, err := strconv.Atoi(val); err == nil && t > 0 {
			requestTimeout = t
		}
	}

	var maxBody int64 = 1 << 20 // 1MB
	if val := os.Getenv("MAX_REQUEST_BODY"); val != "" {
		if b, err := strconv.ParseInt(val, 10, 64); err == nil && b > 0 {
			maxBody = b
		}
	}

	compression, ok := ParseCompression(getEnv("BACKUP_COMPRESSION", CompressionNone))
	if !ok {
		compression = CompressionNone
	}

	var corsOrigins []string
	if val := os.Getenv("CORS_ORIGINS"); val != "" {
		for _, origin := range strings.Split(val, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				corsOrigins = append(corsOrigins, origin)
			}
		}
	}

	return Config{
		Port:              getEnv("PORT", ":8080"),
		DataDir:           getEnv("DATA_DIR", "databases"),
		BackupDir:         getEnv("BACKUP_DIR", "backups"),
		Driver:            getEnv("DB_DRIVER", "sqlite3"),
		BackupCompression: compression,
		MaxRequestBody:    maxBody,
		RequestTimeout:    requestTimeout,
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		CORSOrigins:       corsOrigins,
	}
}

// getEnv returns the environment variable value or a default if not set.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// ParseCompression normalizes a backup compression name. It reports false for
// anything other than none or xz in any casing.
func ParseCompression(name string) (string, bool) {
	switch c := strings.ToLower(strings.TrimSpace(name)); c {
	case CompressionNone, CompressionXZ:
		return c, true
	}
	return CompressionNone, false
}
