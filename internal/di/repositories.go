package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/modules/alerts"
	"github.com/aristath/pragmas/internal/modules/journal"
	"github.com/aristath/pragmas/internal/modules/portfolio"
	"github.com/aristath/pragmas/internal/modules/risk"
	"github.com/aristath/pragmas/internal/modules/trading"
	"github.com/aristath/pragmas/internal/tools"
)

// InitializeRepositories creates all repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) {
	container.PortfolioRepo = portfolio.NewPortfolioRepository(container.LedgerDB, log)
	container.PositionRepo = portfolio.NewPositionRepository(container.LedgerDB, log)
	container.TradeRepo = trading.NewTradeRepository(container.LedgerDB, log)
	container.SnapshotRepo = risk.NewSnapshotRepository(container.LedgerDB, log)
	container.AlertRepo = alerts.NewAlertRepository(container.LedgerDB, log)
	container.JournalRepo = journal.NewJournalRepository(container.LedgerDB, log)
	container.ExecutionLogRepo = tools.NewExecutionLogRepository(container.AuditDB.Conn(), log)

	log.Debug().Msg("Repositories initialized")
}
