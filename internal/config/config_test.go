package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("PRAGMAS_DATA_DIR", tmpDir)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "")
	t.Setenv("BACKUP_S3_BUCKET", "")

	cfg, err := Load()
	require.NoError(t, err)

	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, absPath, cfg.DataDir)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "0 */15 * * * *", cfg.Schedules.RiskMonitor)
	assert.Equal(t, 30, cfg.Backup.RetentionDays)
	assert.False(t, cfg.Backup.Enabled())
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	t.Setenv("PRAGMAS_DATA_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PRAGMAS_DATA_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("BACKUP_S3_BUCKET", "pragmas-backups")
	t.Setenv("BACKUP_S3_ACCESS_KEY_ID", "key")
	t.Setenv("BACKUP_S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.DevMode)
	assert.True(t, cfg.Backup.Enabled())
	assert.Equal(t, "pragmas-backups", cfg.Backup.Bucket)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "invalid PORT"},
		{name: "negative retention", mutate: func(c *Config) { c.Backup.RetentionDays = -1 }, wantErr: "BACKUP_RETENTION_DAYS"},
		{
			name: "half credentials",
			mutate: func(c *Config) {
				c.Backup.Bucket = "b"
				c.Backup.AccessKeyID = "only-key"
			},
			wantErr: "must be set together",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Port: 8080, JWTSecret: testSecret}
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
