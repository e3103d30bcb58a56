package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pragmas/internal/domain"
	testingpkg "github.com/aristath/pragmas/internal/testing"
	"github.com/aristath/pragmas/internal/tools"
	"github.com/aristath/pragmas/internal/tools/analytics"
)

func newTestService(t *testing.T) (*PortfolioService, *PositionRepository) {
	t.Helper()
	ledger, audit := testingpkg.NewLedgerAndAudit(t)

	registry, err := analytics.NewRegistry()
	require.NoError(t, err)
	executor := tools.NewExecutor(registry, tools.NewExecutionLogRepository(audit.Conn(), zerolog.Nop()), zerolog.Nop())

	positions := NewPositionRepository(ledger.Conn(), zerolog.Nop())
	svc := NewPortfolioService(NewPortfolioRepository(ledger.Conn(), zerolog.Nop()), positions, executor, zerolog.Nop())
	return svc, positions
}

var owner = &domain.Caller{ID: "alice", Email: "alice@example.com", Role: domain.RoleUser}

func TestPortfolioService_CreateAppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Create(context.Background(), owner, CreateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "USD", p.BaseCurrency)
	assert.Equal(t, "balanced", p.RiskProfile)
	assert.Equal(t, "alice", p.UserID)

	_, err = svc.Create(context.Background(), owner, CreateRequest{BaseCurrency: "EU"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.Create(context.Background(), nil, CreateRequest{})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestPortfolioService_AllocationIsOwnerScoped(t *testing.T) {
	svc, positions := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, owner, CreateRequest{BaseCurrency: "eur", RiskProfile: "growth"})
	require.NoError(t, err)
	assert.Equal(t, "EUR", p.BaseCurrency)

	ledger := NewLedger(positions, zerolog.Nop())
	_, err = ledger.ApplyTrade(ctx, LedgerTrade{PortfolioID: p.ID, Symbol: "AAPL", Side: domain.SideBuy, Quantity: 2, Price: 100, AssetClass: "equity", Sector: "Tech"})
	require.NoError(t, err)
	_, err = ledger.ApplyTrade(ctx, LedgerTrade{PortfolioID: p.ID, Symbol: "TLT", Side: domain.SideBuy, Quantity: 1, Price: 50, AssetClass: "bond", Sector: "Rates"})
	require.NoError(t, err)

	result, err := svc.Allocation(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, result.TotalMarketValue)
	assert.Equal(t, 200.0, result.ByAssetClass["equity"])
	assert.Equal(t, 50.0, result.BySector["Rates"])

	_, err = svc.Allocation(ctx, &domain.Caller{ID: "mallory", Role: domain.RoleUser}, p.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Positions, 2)
}
