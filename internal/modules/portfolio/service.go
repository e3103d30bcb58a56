package portfolio

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/tools"
	"github.com/aristath/pragmas/internal/tools/analytics"
	"github.com/aristath/pragmas/internal/utils"
)

// CreateRequest is the input for creating a portfolio
type CreateRequest struct {
	BaseCurrency string `json:"base_currency"`
	RiskProfile  string `json:"risk_profile"`
}

// PortfolioService implements the caller-facing portfolio operations
type PortfolioService struct {
	portfolios *PortfolioRepository
	positions  *PositionRepository
	executor   *tools.Executor
	log        zerolog.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(
	portfolios *PortfolioRepository,
	positions *PositionRepository,
	executor *tools.Executor,
	log zerolog.Logger,
) *PortfolioService {
	return &PortfolioService{
		portfolios: portfolios,
		positions:  positions,
		executor:   executor,
		log:        log.With().Str("service", "portfolio").Logger(),
	}
}

// Create validates the request, applies defaults and stores a new portfolio for caller
func (s *PortfolioService) Create(ctx context.Context, caller *domain.Caller, req CreateRequest) (*Portfolio, error) {
	if caller == nil {
		return nil, domain.NewUnauthorizedError("Unauthorized")
	}

	base := strings.ToUpper(strings.TrimSpace(req.BaseCurrency))
	if base == "" {
		base = DefaultBaseCurrency
	}
	profile := utils.SanitizeText(req.RiskProfile)
	if profile == "" {
		profile = DefaultRiskProfile
	}

	var v domain.Violations
	v.Check(len(base) >= 3 && len(base) <= 8, "base_currency", "must be 3 to 8 characters")
	v.Check(len(profile) <= 32, "risk_profile", "must be at most 32 characters")
	if err := v.Err(); err != nil {
		return nil, err
	}

	p := Portfolio{
		ID:           uuid.NewString(),
		UserID:       caller.ID,
		BaseCurrency: base,
		RiskProfile:  profile,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.portfolios.Create(ctx, p); err != nil {
		return nil, domain.NewPersistenceError("failed to create portfolio", err)
	}
	return &p, nil
}

// List returns the caller's portfolios with all their positions
func (s *PortfolioService) List(ctx context.Context, caller *domain.Caller) ([]Portfolio, error) {
	if caller == nil {
		return nil, domain.NewUnauthorizedError("Unauthorized")
	}

	portfolios, err := s.portfolios.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to list portfolios", err)
	}
	for i := range portfolios {
		positions, err := s.positions.ListByPortfolio(ctx, portfolios[i].ID, false)
		if err != nil {
			return nil, domain.NewPersistenceError("failed to list positions", err)
		}
		portfolios[i].Positions = positions
	}
	return portfolios, nil
}

// Allocation runs the allocation tool over the caller's open positions marked at average cost
func (s *PortfolioService) Allocation(ctx context.Context, caller *domain.Caller, portfolioID string) (analytics.AllocationResult, error) {
	if caller == nil {
		return analytics.AllocationResult{}, domain.NewUnauthorizedError("Unauthorized")
	}
	if _, err := s.portfolios.GetOwned(ctx, portfolioID, caller.ID); err != nil {
		return analytics.AllocationResult{}, err
	}

	positions, err := s.positions.ListByPortfolio(ctx, portfolioID, true)
	if err != nil {
		return analytics.AllocationResult{}, domain.NewPersistenceError("failed to list positions", err)
	}

	input := analytics.AllocationInput{Positions: make([]analytics.AllocationPosition, 0, len(positions))}
	for _, p := range positions {
		input.Positions = append(input.Positions, analytics.AllocationPosition{
			Symbol:      p.Symbol,
			MarketValue: p.Quantity * p.AvgCost,
			AssetClass:  p.AssetClass,
			Sector:      p.Sector,
		})
	}

	return tools.Run[analytics.AllocationResult](ctx, s.executor, analytics.AllocationName, input, caller)
}
