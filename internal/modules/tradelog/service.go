package tradelog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/database"
	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/events"
	"github.com/aristath/pragmas/internal/modules/alerts"
	"github.com/aristath/pragmas/internal/modules/journal"
	"github.com/aristath/pragmas/internal/modules/portfolio"
	"github.com/aristath/pragmas/internal/modules/risk"
	"github.com/aristath/pragmas/internal/modules/trading"
	"github.com/aristath/pragmas/internal/tools"
	"github.com/aristath/pragmas/internal/tools/analytics"
	"github.com/aristath/pragmas/internal/utils"
)

// TradeLogService runs the trade log pipeline. Every write of one call
// happens in a single ledger transaction: all of it commits or none of it.
type TradeLogService struct {
	db         *database.DB
	portfolios *portfolio.PortfolioRepository
	positions  *portfolio.PositionRepository
	ledger     *portfolio.Ledger
	trades     *trading.TradeRepository
	snapshots  *risk.SnapshotRepository
	alerts     *alerts.AlertRepository
	journal    *journal.JournalRepository
	executor   *tools.Executor
	publisher  events.Publisher
	log        zerolog.Logger
	now        func() time.Time
}

// NewTradeLogService creates a new trade log service. Repositories are
// bound to ledgerDB; each call rebinds them to its own transaction.
func NewTradeLogService(
	ledgerDB *database.DB,
	portfolios *portfolio.PortfolioRepository,
	positions *portfolio.PositionRepository,
	ledger *portfolio.Ledger,
	trades *trading.TradeRepository,
	snapshots *risk.SnapshotRepository,
	alertRepo *alerts.AlertRepository,
	journalRepo *journal.JournalRepository,
	executor *tools.Executor,
	publisher events.Publisher,
	log zerolog.Logger,
) *TradeLogService {
	return &TradeLogService{
		db:         ledgerDB,
		portfolios: portfolios,
		positions:  positions,
		ledger:     ledger,
		trades:     trades,
		snapshots:  snapshots,
		alerts:     alertRepo,
		journal:    journalRepo,
		executor:   executor,
		publisher:  publisher,
		log:        log.With().Str("service", "tradelog").Logger(),
		now:        time.Now,
	}
}

// LogTrade records cmd for caller.
//
// Ownership is checked before the transaction opens, so a foreign or missing
// portfolio is NotFound with nothing written. Any later failure rolls back
// every write of the call.
func (s *TradeLogService) LogTrade(ctx context.Context, caller *domain.Caller, cmd TradeCommand) (*Result, error) {
	defer utils.OperationTimer("log_trade", s.log)()

	if caller == nil {
		return nil, domain.NewUnauthorizedError("Unauthorized")
	}

	if _, err := s.portfolios.GetOwned(ctx, cmd.PortfolioID, caller.ID); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, err
		}
		return nil, domain.NewPersistenceError("failed to load portfolio", err)
	}

	tx, err := s.db.BeginScope(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to open transaction", err)
	}
	defer tx.Close()

	result, err := s.run(ctx, tx, caller, cmd)
	if err != nil {
		s.log.Error().
			Err(err).
			Str("portfolio_id", cmd.PortfolioID).
			Str("symbol", cmd.Symbol).
			Msg("Trade log rolled back")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewPersistenceError("failed to commit trade log", err)
	}

	s.publish(caller, result)

	s.log.Info().
		Str("portfolio_id", cmd.PortfolioID).
		Str("symbol", cmd.Symbol).
		Str("side", string(cmd.Side)).
		Str("journal_id", result.JournalID).
		Msg("Trade logged")

	return result, nil
}

// run executes the pipeline steps in order. Later steps read what earlier
// steps wrote through the same transaction.
func (s *TradeLogService) run(ctx context.Context, tx *database.Tx, caller *domain.Caller, cmd TradeCommand) (*Result, error) {
	now := s.now().UTC()

	// Trade event
	amounts := trading.ComputeAmounts(cmd.Quantity, cmd.Price, cmd.FeeAmount)
	trade := trading.TradeEvent{
		ID:          uuid.NewString(),
		PortfolioID: cmd.PortfolioID,
		Symbol:      cmd.Symbol,
		Side:        cmd.Side,
		Size:        cmd.Quantity,
		Price:       cmd.Price,
		FeeAmount:   amounts.FeeAmount,
		FeePct:      amounts.FeePct,
		NetAmount:   amounts.NetAmount,
		Timestamp:   cmd.Timestamp,
		CreatedAt:   now,
	}
	if err := s.trades.WithTx(tx).Create(ctx, trade); err != nil {
		return nil, domain.NewPersistenceError("failed to record trade", err)
	}

	// Ledger
	_, err := s.ledger.WithTx(tx).ApplyTrade(ctx, portfolio.LedgerTrade{
		PortfolioID: cmd.PortfolioID,
		Symbol:      cmd.Symbol,
		Side:        cmd.Side,
		Quantity:    cmd.Quantity,
		Price:       cmd.Price,
		AssetClass:  cmd.AssetClass,
		Sector:      cmd.Sector,
	})
	if err != nil {
		return nil, domain.NewPersistenceError("failed to update position", err)
	}

	// Fee impact of the single leg just logged
	feeImpact, err := tools.Run[analytics.FeeImpactResult](ctx, s.executor, analytics.FeeImpactName,
		analytics.FeeImpactInput{TradeEvents: []analytics.TradeLeg{{
			Symbol: cmd.Symbol,
			Side:   string(cmd.Side),
			Size:   cmd.Quantity,
			Price:  cmd.Price,
			Fee:    amounts.Fee,
		}}}, caller)
	if err != nil {
		return nil, err
	}

	// Composition after the trade, stressed on the traded sector
	positions, err := s.positions.WithTx(tx).ListByPortfolio(ctx, cmd.PortfolioID, true)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to load positions", err)
	}
	composition := risk.Composition(positions, risk.Mark{Symbol: cmd.Symbol, Price: cmd.Price})

	stress, err := tools.Run[analytics.StressTestResult](ctx, s.executor, analytics.StressTestName,
		analytics.StressTestInput{
			Positions: composition,
			Scenario:  analytics.Scenario{Sector: cmd.Sector, ShockPct: risk.DefaultShockPct},
		}, caller)
	if err != nil {
		return nil, err
	}

	// Risk snapshot
	snapshot := risk.Derive(uuid.NewString(), cmd.PortfolioID, stress, risk.SectorExposure(composition), cmd.Timestamp, now)
	if err := s.snapshots.WithTx(tx).Create(ctx, snapshot); err != nil {
		return nil, domain.NewPersistenceError("failed to record risk snapshot", err)
	}

	// Related alert
	related, err := s.alerts.WithTx(tx).FindRelated(ctx, alerts.RelatedQuery{
		Since:       now.Add(-alerts.RelatedWindow),
		UserID:      caller.ID,
		PortfolioID: cmd.PortfolioID,
		Symbol:      cmd.Symbol,
		Sector:      cmd.Sector,
	})
	if err != nil {
		return nil, domain.NewPersistenceError("failed to look up related alert", err)
	}
	relatedID := ""
	if related != nil {
		relatedID = related.ID
	}

	// Journal entry
	tags := cmd.Tags
	if tags == nil {
		tags = []string{}
	}
	entry := journal.Entry{
		ID:             uuid.NewString(),
		TradeEventID:   trade.ID,
		RiskSnapshotID: snapshot.ID,
		RelatedAlertID: relatedID,
		Tags:           tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.journal.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, domain.NewPersistenceError("failed to create journal entry", err)
	}

	return &Result{
		Trade:          trade,
		JournalID:      entry.ID,
		RelatedAlertID: relatedID,
		Computed: Computed{
			FeeImpact:      feeImpact,
			StressTest:     stress,
			RiskSnapshotID: snapshot.ID,
		},
		Disclaimer: domain.Disclaimer,
	}, nil
}

func (s *TradeLogService) publish(caller *domain.Caller, result *Result) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(caller.ID, &events.TradeLoggedData{
		PortfolioID:    result.Trade.PortfolioID,
		TradeEventID:   result.Trade.ID,
		JournalEntryID: result.JournalID,
		RiskSnapshotID: result.Computed.RiskSnapshotID,
		RelatedAlertID: result.RelatedAlertID,
		Symbol:         result.Trade.Symbol,
		Side:           string(result.Trade.Side),
		Size:           result.Trade.Size,
		Price:          result.Trade.Price,
		FeeAmount:      result.Trade.FeeAmount,
		StressPnL:      result.Computed.StressTest.PnL,
	})
}
