package di

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pragmas/internal/config"
	"github.com/aristath/pragmas/internal/tools/analytics"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:   t.TempDir(),
		Port:      8080,
		JWTSecret: strings.Repeat("s", config.MinJWTSecretLength),
		Schedules: config.ScheduleConfig{
			RiskMonitor:   "0 */15 * * * *",
			WALCheckpoint: "0 0 * * * *",
			Backup:        "0 30 3 * * *",
		},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	assert.NotNil(t, container.LedgerDB)
	assert.NotNil(t, container.AuditDB)
	assert.NotNil(t, container.TradeLogService)
	assert.NotNil(t, container.JournalService)
	assert.NotNil(t, container.RiskMonitor)
	assert.NotNil(t, container.AuthMiddleware)
	assert.Nil(t, container.BackupService)

	_, ok := container.ToolRegistry.Lookup(analytics.StressTestName)
	assert.True(t, ok)

	for _, name := range []string{"ledger.db", "audit.db"} {
		_, err := os.Stat(filepath.Join(cfg.DataDir, name))
		assert.NoError(t, err, name)
	}

	require.NotNil(t, jobs)
	assert.Equal(t, "risk_monitor", jobs.RiskMonitor.Name())
	assert.Equal(t, "wal_checkpoint", jobs.WALCheckpoint.Name())
	assert.Nil(t, jobs.Backup)
	assert.Equal(t, 2, jobs.Scheduler.Entries())
}

func TestWire_RejectsBadSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schedules.RiskMonitor = "whenever"

	container, jobs, err := Wire(cfg, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, container)
	assert.Nil(t, jobs)
}
