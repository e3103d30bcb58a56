// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/aristath/pragmas/internal/utils"
)

// MinJWTSecretLength is the shortest accepted session signing secret.
const MinJWTSecretLength = 32

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for all databases (always absolute)
	Port      int
	LogLevel  string
	DevMode   bool
	JWTSecret string // HMAC secret used to verify session tokens

	// CORSOrigins are the browser origins allowed to call the API.
	// Empty means any http(s) origin (any origin at all in dev mode).
	CORSOrigins []string

	Schedules ScheduleConfig
	Backup    BackupConfig
}

// ScheduleConfig holds cron expressions (with seconds field) for background jobs.
type ScheduleConfig struct {
	RiskMonitor   string
	WALCheckpoint string
	Backup        string
}

// BackupConfig holds S3-compatible object storage settings for database backups.
// Backups are disabled when Bucket is empty.
type BackupConfig struct {
	Bucket          string
	Region          string
	Endpoint        string // Custom endpoint for S3-compatible providers (R2, MinIO)
	AccessKeyID     string
	SecretAccessKey string
	RetentionDays   int
}

// Enabled reports whether a backup destination is configured.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("PRAGMAS_DATA_DIR", "./data")

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
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: utils.ParseCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		Schedules: ScheduleConfig{
			RiskMonitor:   getEnv("RISK_MONITOR_SCHEDULE", "0 */15 * * * *"),
			WALCheckpoint: getEnv("WAL_CHECKPOINT_SCHEDULE", "0 0 * * * *"),
			Backup:        getEnv("BACKUP_SCHEDULE", "0 30 3 * * *"),
		},
		Backup: BackupConfig{
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			Region:          getEnv("BACKUP_S3_REGION", "auto"),
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.Backup.RetentionDays < 0 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must not be negative")
	}
	if c.Backup.Enabled() && (c.Backup.AccessKeyID == "") != (c.Backup.SecretAccessKey == "") {
		return fmt.Errorf("BACKUP_S3_ACCESS_KEY_ID and BACKUP_S3_SECRET_ACCESS_KEY must be set together")
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
