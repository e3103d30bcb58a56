package portfolio

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/database"
	"github.com/aristath/pragmas/internal/domain"
)

// PortfolioRepository handles portfolio database operations in ledger.db
type PortfolioRepository struct {
	db  database.Querier
	log zerolog.Logger
}

const portfolioColumns = `id, user_id, base_currency, risk_profile, created_at`

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db database.Querier, log zerolog.Logger) *PortfolioRepository {
	return &PortfolioRepository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *PortfolioRepository) WithTx(tx database.Querier) *PortfolioRepository {
	return &PortfolioRepository{db: tx, log: r.log}
}

// Create inserts a new portfolio
func (r *PortfolioRepository) Create(ctx context.Context, p Portfolio) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO portfolios (id, user_id, base_currency, risk_profile, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.BaseCurrency, p.RiskProfile, p.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}

	r.log.Info().
		Str("portfolio_id", p.ID).
		Str("user_id", p.UserID).
		Msg("Portfolio created")
	return nil
}

// GetOwned returns the portfolio only if userID owns it. Absent and foreign
// portfolios both yield a NotFound error so ownership is never disclosed.
func (r *PortfolioRepository) GetOwned(ctx context.Context, id, userID string) (*Portfolio, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+portfolioColumns+" FROM portfolios WHERE id = ? AND user_id = ?", id, userID)

	p, err := scanPortfolio(row)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("Portfolio not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return p, nil
}

// ListByUser returns the user's portfolios, newest first
func (r *PortfolioRepository) ListByUser(ctx context.Context, userID string) ([]Portfolio, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+portfolioColumns+" FROM portfolios WHERE user_id = ? ORDER BY created_at DESC, rowid DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios: %w", err)
	}
	return portfolios, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPortfolio(s rowScanner) (*Portfolio, error) {
	var p Portfolio
	var createdAt int64
	if err := s.Scan(&p.ID, &p.UserID, &p.BaseCurrency, &p.RiskProfile, &createdAt); err != nil {
		return nil, err
	}
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &p, nil
}
