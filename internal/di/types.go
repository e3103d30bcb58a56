// Package di wires databases, repositories, services and jobs.
//
// Container is the single source of truth for service instances; the server
// builds its handlers from it.
package di

import (
	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/database"
	"github.com/aristath/pragmas/internal/events"
	"github.com/aristath/pragmas/internal/modules/alerts"
	"github.com/aristath/pragmas/internal/modules/journal"
	"github.com/aristath/pragmas/internal/modules/portfolio"
	"github.com/aristath/pragmas/internal/modules/risk"
	"github.com/aristath/pragmas/internal/modules/tradelog"
	"github.com/aristath/pragmas/internal/modules/trading"
	"github.com/aristath/pragmas/internal/reliability"
	"github.com/aristath/pragmas/internal/scheduler"
	"github.com/aristath/pragmas/internal/tools"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	LedgerDB *database.DB // portfolios, positions, trades, snapshots, alerts, journal
	AuditDB  *database.DB // tool execution logs

	// Repositories
	PortfolioRepo    *portfolio.PortfolioRepository
	PositionRepo     *portfolio.PositionRepository
	TradeRepo        *trading.TradeRepository
	SnapshotRepo     *risk.SnapshotRepository
	AlertRepo        *alerts.AlertRepository
	JournalRepo      *journal.JournalRepository
	ExecutionLogRepo *tools.ExecutionLogRepository

	// Tools
	ToolRegistry *tools.Registry
	ToolExecutor *tools.Executor

	// Services
	EventBus         *events.Bus
	Ledger           *portfolio.Ledger
	PortfolioService *portfolio.PortfolioService
	TradeLogService  *tradelog.TradeLogService
	RiskService      *risk.RiskService
	AlertService     *alerts.AlertService
	JournalService   *journal.JournalService
	RiskMonitor      *alerts.Monitor
	BackupService    *reliability.BackupService // nil when backups are not configured

	// Auth
	Tokens         *auth.TokenManager
	AuthMiddleware *auth.Middleware
}

// Databases returns every open database, ledger first
func (c *Container) Databases() []*database.DB {
	return []*database.DB{c.LedgerDB, c.AuditDB}
}

// Close closes every open database
func (c *Container) Close() error {
	var firstErr error
	for _, db := range c.Databases() {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// JobInstances holds the registered background jobs
type JobInstances struct {
	Scheduler     *scheduler.Scheduler
	RiskMonitor   scheduler.Job
	WALCheckpoint scheduler.Job
	Backup        scheduler.Job // nil when backups are not configured
}
