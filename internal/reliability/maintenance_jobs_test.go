package reliability

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/pragmas/internal/database"
	testingpkg "github.com/aristath/pragmas/internal/testing"
)

func TestWALCheckpointJob_Run(t *testing.T) {
	ledger, audit := testingpkg.NewLedgerAndAudit(t)
	testingpkg.SeedPortfolio(t, ledger, testingpkg.PortfolioID, testingpkg.OwnerID)

	// an unreadable data dir skips the disk check
	job := NewWALCheckpointJob([]*database.DB{ledger, audit}, filepath.Join(t.TempDir(), "missing"), zerolog.Nop())
	assert.Equal(t, "wal_checkpoint", job.Name())
	assert.NoError(t, job.Run())
}

func TestBackupJob_Run(t *testing.T) {
	ledger, audit := testingpkg.NewLedgerAndAudit(t)
	store := newMemoryStore()

	job := NewBackupJob(NewBackupService(store, []*database.DB{ledger, audit}, t.TempDir(), zerolog.Nop()), 30, zerolog.Nop())
	assert.NoError(t, job.Run())
	assert.Len(t, store.objects, 1)
}
