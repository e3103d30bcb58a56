package trading

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pragmas/internal/domain"
	testingpkg "github.com/aristath/pragmas/internal/testing"
)

func TestTradeRepository_CreateAndListRecent(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "ledger")
	defer cleanup()
	testingpkg.SeedPortfolio(t, db, "p1", testingpkg.OwnerID)

	repo := NewTradeRepository(db.Conn(), zerolog.Nop())
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, price := range []float64{100, 101, 102, 103} {
		require.NoError(t, repo.Create(ctx, TradeEvent{
			ID: string(rune('a' + i)), PortfolioID: "p1", Symbol: "AAPL", Side: domain.SideBuy,
			Size: 1, Price: price, Timestamp: base.Add(time.Duration(i) * time.Hour), CreatedAt: base,
		}))
	}

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Price)
	assert.Equal(t, base, got.Timestamp)

	recent, err := repo.ListRecentBySymbol(ctx, "p1", "AAPL", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []float64{101, 102, 103}, []float64{recent[0].Price, recent[1].Price, recent[2].Price})

	missing, err := repo.GetByID(ctx, "zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
