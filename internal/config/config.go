// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/opencoaf/caseledger/internal/modules/settings"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	Port     int
	DevMode  bool
	LogLevel string

	// GROQ text-generation collaborator (report narrative only; the analysis
	// core never depends on it for numeric results)
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	// S3-compatible object storage for raw upload blobs (Supabase storage
	// exposes an S3-compatible endpoint)
	Storage StorageConfig

	// RetentionDays - uploads of archived cases older than this are purged
	// by the cleanup job
	RetentionDays int
}

// StorageConfig holds object storage connection settings
type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Configured reports whether object storage credentials are present.
// Without them uploads are parsed and persisted but raw blobs are not kept.
func (s *StorageConfig) Configured() bool {
	return s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory, resolve to absolute, ensure it exists
	dataDir := getEnv("CASELEDGER_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:     absDataDir,
		Port:        getEnvAsInt("PORT", 8080),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
			Region:    getEnv("STORAGE_REGION", "us-east-1"),
			Bucket:    getEnv("STORAGE_BUCKET", ""),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
		},
		RetentionDays: getEnvAsInt("UPLOAD_RETENTION_DAYS", 365),
	}

	return cfg, nil
}

// UpdateFromSettings updates configuration from the settings database.
// Settings DB values take precedence over environment variables, so
// credentials can be rotated via the UI without restarting the service.
func (c *Config) UpdateFromSettings(settingsRepo *settings.Repository) error {
	groqKey, err := settingsRepo.Get("groq_api_key")
	if err != nil {
		return fmt.Errorf("failed to get groq_api_key from settings: %w", err)
	}
	if groqKey != nil && *groqKey != "" {
		c.GroqAPIKey = *groqKey
	}

	groqModel, err := settingsRepo.Get("groq_model")
	if err != nil {
		return fmt.Errorf("failed to get groq_model from settings: %w", err)
	}
	if groqModel != nil && *groqModel != "" {
		c.GroqModel = *groqModel
	}

	retention, err := settingsRepo.Get("upload_retention_days")
	if err != nil {
		return fmt.Errorf("failed to get upload_retention_days from settings: %w", err)
	}
	if retention != nil && *retention != "" {
		if days, err := strconv.Atoi(*retention); err == nil && days > 0 {
			c.RetentionDays = days
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
