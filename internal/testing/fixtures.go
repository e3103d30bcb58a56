package testing

import (
	"testing"
	"time"

	"github.com/aristath/pragmas/internal/database"
)

// Fixture IDs shared across package tests.
const (
	OwnerID       = "user-owner"
	OtherUserID   = "user-other"
	PortfolioID   = "portfolio-1"
	OtherPortfoID = "portfolio-other"
)

// SeedPortfolio inserts a portfolio row directly.
func SeedPortfolio(t *testing.T, db *database.DB, id, userID string) {
	t.Helper()
	_, err := db.Conn().Exec(
		`INSERT INTO portfolios (id, user_id, base_currency, risk_profile, created_at) VALUES (?, ?, 'USD', 'balanced', ?)`,
		id, userID, time.Now().UnixMilli(),
	)
	if err != nil {
		t.Fatalf("Failed to seed portfolio %s: %v", id, err)
	}
}

// SeedPosition inserts a position row directly.
func SeedPosition(t *testing.T, db *database.DB, portfolioID, symbol, sector string, quantity, avgCost float64) {
	t.Helper()
	now := time.Now().UnixMilli()
	_, err := db.Conn().Exec(
		`INSERT INTO positions (id, portfolio_id, symbol, quantity, avg_cost, asset_class, sector, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 'equity', ?, ?, ?)`,
		portfolioID+"-"+symbol, portfolioID, symbol, quantity, avgCost, sector, now, now,
	)
	if err != nil {
		t.Fatalf("Failed to seed position %s: %v", symbol, err)
	}
}

// SeedAlert inserts an alert row directly. Empty portfolioID/symbol/sector are stored as NULL.
func SeedAlert(t *testing.T, db *database.DB, id, userID, portfolioID, symbol, sector, title, message string, createdAt time.Time) {
	t.Helper()
	_, err := db.Conn().Exec(
		`INSERT INTO alerts (id, user_id, portfolio_id, symbol, sector, type, title, message, created_at)
		 VALUES (?, ?, ?, ?, ?, 'TEST', ?, ?, ?)`,
		id, userID, nullable(portfolioID), nullable(symbol), nullable(sector), title, message, createdAt.UnixMilli(),
	)
	if err != nil {
		t.Fatalf("Failed to seed alert %s: %v", id, err)
	}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *database.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Conn().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
