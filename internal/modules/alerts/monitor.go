package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/events"
	"github.com/aristath/pragmas/internal/modules/portfolio"
	"github.com/aristath/pragmas/internal/modules/trading"
	"github.com/aristath/pragmas/internal/tools"
	"github.com/aristath/pragmas/internal/tools/analytics"
)

// MonitorHistory is how many recent trades per symbol feed the return series
const MonitorHistory = 60

// ScanResult summarises one monitor pass
type ScanResult struct {
	Checked int
	Skipped int
	Created int
}

// Monitor raises RETURN_ANOMALY alerts for open positions whose latest
// trade-to-trade return is a z-score outlier.
type Monitor struct {
	positions *portfolio.PositionRepository
	trades    *trading.TradeRepository
	alerts    *AlertRepository
	executor  *tools.Executor
	publisher events.Publisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewMonitor creates a new risk monitor
func NewMonitor(
	positions *portfolio.PositionRepository,
	trades *trading.TradeRepository,
	alerts *AlertRepository,
	executor *tools.Executor,
	publisher events.Publisher,
	log zerolog.Logger,
) *Monitor {
	return &Monitor{
		positions: positions,
		trades:    trades,
		alerts:    alerts,
		executor:  executor,
		publisher: publisher,
		log:       log.With().Str("component", "risk_monitor").Logger(),
		now:       time.Now,
	}
}

// Scan checks every open position once. A failure on one position is logged
// and does not stop the pass.
func (m *Monitor) Scan(ctx context.Context) (ScanResult, error) {
	var result ScanResult

	positions, err := m.positions.ListOpenWithOwner(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list open positions: %w", err)
	}

	for _, pos := range positions {
		created, checked, err := m.check(ctx, pos)
		if err != nil {
			m.log.Warn().
				Err(err).
				Str("portfolio_id", pos.PortfolioID).
				Str("symbol", pos.Symbol).
				Msg("Risk monitor check failed")
			result.Skipped++
			continue
		}
		if !checked {
			result.Skipped++
			continue
		}
		result.Checked++
		if created {
			result.Created++
		}
	}

	m.log.Info().
		Int("checked", result.Checked).
		Int("skipped", result.Skipped).
		Int("created", result.Created).
		Msg("Risk monitor pass complete")

	return result, nil
}

func (m *Monitor) check(ctx context.Context, pos portfolio.OwnedPosition) (created, checked bool, err error) {
	history, err := m.trades.ListRecentBySymbol(ctx, pos.PortfolioID, pos.Symbol, MonitorHistory)
	if err != nil {
		return false, false, err
	}
	returns := trading.Returns(history)
	if len(returns) < analytics.MinReturns {
		return false, false, nil
	}

	owner := &domain.Caller{ID: pos.UserID, Role: domain.RoleUser}
	z, err := tools.Run[analytics.ZScoreResult](ctx, m.executor, analytics.ZScoreAnomalyName,
		analytics.ZScoreInput{Symbol: pos.Symbol, Returns: returns}, owner)
	if err != nil {
		return false, false, err
	}
	if !z.IsAnomaly {
		return false, true, nil
	}

	now := m.now().UTC()
	exists, err := m.alerts.ExistsRecent(ctx, pos.PortfolioID, pos.Symbol, TypeReturnAnomaly, now.Add(-RelatedWindow))
	if err != nil {
		return false, true, err
	}
	if exists {
		return false, true, nil
	}

	alert := Alert{
		ID:          uuid.NewString(),
		UserID:      pos.UserID,
		PortfolioID: pos.PortfolioID,
		Symbol:      pos.Symbol,
		Sector:      pos.Sector,
		Type:        TypeReturnAnomaly,
		Title:       fmt.Sprintf("%s return anomaly", pos.Symbol),
		Message:     fmt.Sprintf("Latest %s return deviates %.2f standard deviations from its mean.", pos.Symbol, z.Z),
		Data: map[string]interface{}{
			"z":         z.Z,
			"mean":      z.Mean,
			"stdev":     z.StdDev,
			"latest":    z.Latest,
			"threshold": z.Threshold,
		},
		CreatedAt: now,
	}
	if err := m.alerts.Create(ctx, alert); err != nil {
		return false, true, err
	}

	if m.publisher != nil {
		m.publisher.Publish(alert.UserID, &events.AlertCreatedData{
			AlertID:     alert.ID,
			PortfolioID: alert.PortfolioID,
			Symbol:      alert.Symbol,
			Type:        alert.Type,
			Title:       alert.Title,
		})
	}
	return true, true, nil
}
