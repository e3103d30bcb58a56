package tradelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pragmas/internal/domain"
)

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func TestValidate_AppliesDefaults(t *testing.T) {
	cmd, err := LogTradeRequest{
		PortfolioID: "p1",
		Symbol:      " aapl ",
		Direction:   "buy",
		Quantity:    10,
		Price:       100,
		Tags:        []string{"<b>Earnings</b>", "earnings", "Swing  Trade"},
	}.Validate(now)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", cmd.Symbol)
	assert.Equal(t, domain.SideBuy, cmd.Side)
	assert.Equal(t, domain.Unknown, cmd.AssetClass)
	assert.Equal(t, domain.Unknown, cmd.Sector)
	assert.Equal(t, now, cmd.Timestamp)
	assert.Nil(t, cmd.FeeAmount)
	assert.Equal(t, []string{"earnings", "swing trade"}, cmd.Tags)
}

func TestValidate_ParsesTimestampFeeAndSideAlias(t *testing.T) {
	fee := 0.5
	cmd, err := LogTradeRequest{
		PortfolioID: "p1",
		Symbol:      "MSFT",
		Side:        "SELL",
		Quantity:    1,
		Price:       0,
		FeeAmount:   &fee,
		Timestamp:   "2026-01-02T03:04:05.678+02:00",
		AssetClass:  "equity",
		Sector:      "Tech",
	}.Validate(now)
	require.NoError(t, err)

	assert.Equal(t, domain.SideSell, cmd.Side)
	assert.Equal(t, time.Date(2026, 1, 2, 1, 4, 5, 678000000, time.UTC), cmd.Timestamp)
	require.NotNil(t, cmd.FeeAmount)
	assert.Equal(t, 0.5, *cmd.FeeAmount)
	assert.Equal(t, "Tech", cmd.Sector)
}

func TestValidate_RejectsBadInput(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name  string
		req   LogTradeRequest
		field string
	}{
		{"missing portfolio", LogTradeRequest{Symbol: "A", Direction: "BUY", Quantity: 1}, "portfolio_id"},
		{"missing symbol", LogTradeRequest{PortfolioID: "p", Direction: "BUY", Quantity: 1}, "symbol"},
		{"bad direction", LogTradeRequest{PortfolioID: "p", Symbol: "A", Direction: "HOLD", Quantity: 1}, "direction"},
		{"zero quantity", LogTradeRequest{PortfolioID: "p", Symbol: "A", Direction: "BUY"}, "quantity"},
		{"negative price", LogTradeRequest{PortfolioID: "p", Symbol: "A", Direction: "BUY", Quantity: 1, Price: -1}, "price"},
		{"negative fee", LogTradeRequest{PortfolioID: "p", Symbol: "A", Direction: "BUY", Quantity: 1, FeeAmount: &negative}, "fee_amount"},
		{"bad timestamp", LogTradeRequest{PortfolioID: "p", Symbol: "A", Direction: "BUY", Quantity: 1, Timestamp: "yesterday"}, "timestamp"},
		{"empty tag", LogTradeRequest{PortfolioID: "p", Symbol: "A", Direction: "BUY", Quantity: 1, Tags: []string{""}}, "tags"},
		{"overflowing notional", LogTradeRequest{PortfolioID: "p", Symbol: "A", Direction: "BUY", Quantity: 1e200, Price: 1e200}, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Validate(now)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var de *domain.Error
			require.ErrorAs(t, err, &de)
			assert.Contains(t, de.Fields, tt.field)
		})
	}
}

func TestValidate_NotionalMustBeFinite(t *testing.T) {
	_, err := LogTradeRequest{
		PortfolioID: "p1",
		Symbol:      "AAPL",
		Direction:   "BUY",
		Quantity:    1e200,
		Price:       1e200,
	}.Validate(now)
	require.Error(t, err)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "quantity x price must be a finite number", de.Fields["quantity"])
}
