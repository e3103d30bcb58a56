package portfolio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pragmas/internal/domain"
	testingpkg "github.com/aristath/pragmas/internal/testing"
)

func buy(qty, price float64) LedgerTrade {
	return LedgerTrade{PortfolioID: "p1", Symbol: "AAPL", Side: domain.SideBuy, Quantity: qty, Price: price, AssetClass: "equity", Sector: "Tech"}
}

func sell(qty, price float64) LedgerTrade {
	t := buy(qty, price)
	t.Side = domain.SideSell
	return t
}

func TestNextPosition_SellWithoutHoldingCreatesNothing(t *testing.T) {
	assert.Nil(t, NextPosition(nil, sell(5, 100), time.Now()))
}

func TestNextPosition_FirstBuy(t *testing.T) {
	pos := NextPosition(nil, buy(10, 100), time.Now())
	require.NotNil(t, pos)
	assert.Equal(t, 10.0, pos.Quantity)
	assert.Equal(t, 100.0, pos.AvgCost)
	assert.Equal(t, "Tech", pos.Sector)
	assert.NotEmpty(t, pos.ID)
}

func TestNextPosition_BuysAverageByQuantity(t *testing.T) {
	trades := []LedgerTrade{buy(10, 100), buy(5, 130), buy(2.5, 90.25)}

	var pos *Position
	var cost, qty float64
	for _, tr := range trades {
		pos = NextPosition(pos, tr, time.Now())
		cost += tr.Quantity * tr.Price
		qty += tr.Quantity
	}

	assert.Equal(t, qty, pos.Quantity)
	assert.InDelta(t, cost/qty, pos.AvgCost, 1e-8)
}

func TestNextPosition_SellKeepsAvgCostAndFloorsAtZero(t *testing.T) {
	pos := NextPosition(nil, buy(10, 100), time.Now())
	pos = NextPosition(pos, buy(10, 200), time.Now())
	require.Equal(t, 150.0, pos.AvgCost)

	pos = NextPosition(pos, sell(5, 999), time.Now())
	assert.Equal(t, 15.0, pos.Quantity)
	assert.Equal(t, 150.0, pos.AvgCost)

	pos = NextPosition(pos, sell(100, 1), time.Now())
	assert.Equal(t, 0.0, pos.Quantity)
	assert.Equal(t, 150.0, pos.AvgCost)
}

func TestNextPosition_OverwritesClassification(t *testing.T) {
	pos := NextPosition(nil, buy(1, 10), time.Now())
	next := sell(1, 10)
	next.Sector = "Semis"
	next.AssetClass = "etf"

	pos = NextPosition(pos, next, time.Now())
	assert.Equal(t, "Semis", pos.Sector)
	assert.Equal(t, "etf", pos.AssetClass)
}

func TestNextPosition_BuyAfterFullSell(t *testing.T) {
	pos := NextPosition(nil, buy(10, 100), time.Now())
	pos = NextPosition(pos, sell(10, 100), time.Now())
	pos = NextPosition(pos, buy(4, 50), time.Now())

	assert.Equal(t, 4.0, pos.Quantity)
	assert.Equal(t, 50.0, pos.AvgCost)
}

func TestLedger_ApplyTradePersists(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "ledger")
	defer cleanup()
	testingpkg.SeedPortfolio(t, db, "p1", testingpkg.OwnerID)

	ctx := context.Background()
	positions := NewPositionRepository(db.Conn(), zerolog.Nop())
	ledger := NewLedger(positions, zerolog.Nop())

	pos, err := ledger.ApplyTrade(ctx, sell(1, 10))
	require.NoError(t, err)
	assert.Nil(t, pos)
	assert.Equal(t, 0, testingpkg.CountRows(t, db, "positions"))

	_, err = ledger.ApplyTrade(ctx, buy(10, 100))
	require.NoError(t, err)
	_, err = ledger.ApplyTrade(ctx, buy(10, 110))
	require.NoError(t, err)
	_, err = ledger.ApplyTrade(ctx, sell(25, 120))
	require.NoError(t, err)

	stored, err := positions.GetBySymbol(ctx, "p1", "AAPL")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 0.0, stored.Quantity)
	assert.Equal(t, 105.0, stored.AvgCost)
	assert.Equal(t, 1, testingpkg.CountRows(t, db, "positions"))
}

func TestLedger_ConcurrentBuysInTransactionsDoNotLoseUpdates(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "ledger")
	defer cleanup()
	testingpkg.SeedPortfolio(t, db, "p1", testingpkg.OwnerID)

	ctx := context.Background()
	positions := NewPositionRepository(db.Conn(), zerolog.Nop())
	ledger := NewLedger(positions, zerolog.Nop())

	_, err := ledger.ApplyTrade(ctx, buy(1, 100))
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := db.BeginScope(ctx)
			if err != nil {
				errs <- err
				return
			}
			defer tx.Close()
			if _, err := ledger.WithTx(tx).ApplyTrade(ctx, buy(1, 100)); err != nil {
				errs <- err
				return
			}
			errs <- tx.Commit()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := positions.GetBySymbol(ctx, "p1", "AAPL")
	require.NoError(t, err)
	assert.Equal(t, float64(workers+1), stored.Quantity)
	assert.Equal(t, 100.0, stored.AvgCost)
}
