// Package testing provides testing utilities and helpers for the pragmas project.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/aristath/pragmas/internal/database"
)

// NewTestDB creates a temporary file-backed SQLite database with automatic schema migration.
// Returns the database instance and a cleanup function that closes and removes it.
//
// Supported schema names:
//   - "ledger" - applies ledger_schema.sql
//   - "audit" - applies audit_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	// Temporary files give every test its own isolated database with real WAL semantics
	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(tmpPath + suffix)
		}
	}
}

// NewLedgerAndAudit opens both databases a trade pipeline needs.
func NewLedgerAndAudit(t *testing.T) (ledger *database.DB, audit *database.DB) {
	t.Helper()
	ledger, cleanupLedger := NewTestDB(t, "ledger")
	t.Cleanup(cleanupLedger)
	audit, cleanupAudit := NewTestDB(t, "audit")
	t.Cleanup(cleanupAudit)
	return ledger, audit
}
