package di

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/config"
	"github.com/aristath/pragmas/internal/events"
	"github.com/aristath/pragmas/internal/modules/alerts"
	"github.com/aristath/pragmas/internal/modules/journal"
	"github.com/aristath/pragmas/internal/modules/portfolio"
	"github.com/aristath/pragmas/internal/modules/risk"
	"github.com/aristath/pragmas/internal/modules/tradelog"
	"github.com/aristath/pragmas/internal/reliability"
	"github.com/aristath/pragmas/internal/tools"
	"github.com/aristath/pragmas/internal/tools/analytics"
)

// sessionTTL is the lifetime of tokens issued by the token manager
const sessionTTL = 7 * 24 * time.Hour

// InitializeServices builds the tool registry, executor and every service.
// The trade pipeline cannot run without the fee impact and stress test
// tools, so their absence fails startup.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	registry, err := analytics.NewRegistry()
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}
	if err := registry.Require(analytics.FeeImpactName, analytics.StressTestName, analytics.ZScoreAnomalyName); err != nil {
		return fmt.Errorf("tool registry incomplete: %w", err)
	}
	container.ToolRegistry = registry
	container.ToolExecutor = tools.NewExecutor(registry, container.ExecutionLogRepo, log)

	container.EventBus = events.NewBus(log)
	container.Ledger = portfolio.NewLedger(container.PositionRepo, log)

	container.PortfolioService = portfolio.NewPortfolioService(
		container.PortfolioRepo,
		container.PositionRepo,
		container.ToolExecutor,
		log,
	)
	container.TradeLogService = tradelog.NewTradeLogService(
		container.LedgerDB,
		container.PortfolioRepo,
		container.PositionRepo,
		container.Ledger,
		container.TradeRepo,
		container.SnapshotRepo,
		container.AlertRepo,
		container.JournalRepo,
		container.ToolExecutor,
		container.EventBus,
		log,
	)
	container.RiskService = risk.NewRiskService(container.ToolExecutor, log)
	container.AlertService = alerts.NewAlertService(container.AlertRepo, log)
	container.JournalService = journal.NewJournalService(container.JournalRepo, container.EventBus, log)
	container.RiskMonitor = alerts.NewMonitor(
		container.PositionRepo,
		container.TradeRepo,
		container.AlertRepo,
		container.ToolExecutor,
		container.EventBus,
		log,
	)

	container.Tokens = auth.NewTokenManager(cfg.JWTSecret, sessionTTL)
	container.AuthMiddleware = auth.NewMiddleware(container.Tokens, log)

	if cfg.Backup.Enabled() {
		store, err := reliability.NewS3Client(context.Background(), reliability.S3Config{
			Bucket:          cfg.Backup.Bucket,
			Region:          cfg.Backup.Region,
			Endpoint:        cfg.Backup.Endpoint,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create backup storage client: %w", err)
		}
		container.BackupService = reliability.NewBackupService(store, container.Databases(), cfg.DataDir, log)
	} else {
		log.Info().Msg("Backup bucket not configured, backups disabled")
	}

	log.Debug().Msg("Services initialized")
	return nil
}
