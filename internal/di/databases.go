package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/config"
	"github.com/aristath/pragmas/internal/database"
)

// InitializeDatabases opens ledger.db and audit.db and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// ledger.db - trades are immutable, so it gets the strictest durability profile
	ledgerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "ledger.db"),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger database: %w", err)
	}
	container.LedgerDB = ledgerDB

	// audit.db - written outside the trade transaction
	auditDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "audit.db"),
		Profile: database.ProfileStandard,
		Name:    "audit",
	})
	if err != nil {
		ledgerDB.Close()
		return nil, fmt.Errorf("failed to initialize audit database: %w", err)
	}
	container.AuditDB = auditDB

	for _, db := range container.Databases() {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
	}

	log.Info().
		Str("data_dir", cfg.DataDir).
		Msg("Databases initialized")

	return container, nil
}
