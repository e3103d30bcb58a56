package portfolio

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/database"
	"github.com/aristath/pragmas/internal/utils"
)

// PositionRepository handles position database operations in ledger.db
type PositionRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// positionColumns is the column list used by scanPosition
const positionColumns = `id, portfolio_id, symbol, quantity, avg_cost, asset_class, sector, created_at, updated_at`

// NewPositionRepository creates a new position repository
func NewPositionRepository(db database.Querier, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "position").Logger(),
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *PositionRepository) WithTx(tx database.Querier) *PositionRepository {
	return &PositionRepository{db: tx, log: r.log}
}

// GetBySymbol returns the position for (portfolioID, symbol) or nil
func (r *PositionRepository) GetBySymbol(ctx context.Context, portfolioID, symbol string) (*Position, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+positionColumns+" FROM positions WHERE portfolio_id = ? AND symbol = ?", portfolioID, symbol)

	pos, err := scanPosition(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return pos, nil
}

// Insert creates a position. Monetary fields are rounded to 8 places.
func (r *PositionRepository) Insert(ctx context.Context, pos Position) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO positions
		(id, portfolio_id, symbol, quantity, avg_cost, asset_class, sector, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		pos.ID,
		pos.PortfolioID,
		pos.Symbol,
		utils.Round8(pos.Quantity),
		utils.Round8(pos.AvgCost),
		pos.AssetClass,
		pos.Sector,
		pos.CreatedAt.UnixMilli(),
		pos.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	return nil
}

// Update persists quantity, cost basis and classification of an existing position
func (r *PositionRepository) Update(ctx context.Context, pos Position) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE positions
		SET quantity = ?, avg_cost = ?, asset_class = ?, sector = ?, updated_at = ?
		WHERE id = ?
	`,
		utils.Round8(pos.Quantity),
		utils.Round8(pos.AvgCost),
		pos.AssetClass,
		pos.Sector,
		pos.UpdatedAt.UnixMilli(),
		pos.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update position: %s not found", pos.ID)
	}
	return nil
}

// ListByPortfolio returns every position of a portfolio ordered by symbol.
// openOnly restricts to quantity > 0.
func (r *PositionRepository) ListByPortfolio(ctx context.Context, portfolioID string, openOnly bool) ([]Position, error) {
	query := "SELECT " + positionColumns + " FROM positions WHERE portfolio_id = ?"
	if openOnly {
		query += " AND quantity > 0"
	}
	query += " ORDER BY symbol"

	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, *pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	return positions, nil
}

// ListOpenWithOwner returns every open position across all portfolios with its owner.
// Used by background monitoring, which runs on behalf of each owner.
func (r *PositionRepository) ListOpenWithOwner(ctx context.Context) ([]OwnedPosition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.portfolio_id, p.symbol, p.quantity, p.avg_cost, p.asset_class, p.sector,
		       p.created_at, p.updated_at, f.user_id
		FROM positions p
		JOIN portfolios f ON f.id = p.portfolio_id
		WHERE p.quantity > 0
		ORDER BY p.portfolio_id, p.symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query open positions: %w", err)
	}
	defer rows.Close()

	var out []OwnedPosition
	for rows.Next() {
		var op OwnedPosition
		var createdAt, updatedAt int64
		if err := rows.Scan(&op.ID, &op.PortfolioID, &op.Symbol, &op.Quantity, &op.AvgCost,
			&op.AssetClass, &op.Sector, &createdAt, &updatedAt, &op.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan open position: %w", err)
		}
		op.CreatedAt = time.UnixMilli(createdAt).UTC()
		op.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		out = append(out, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open positions: %w", err)
	}
	return out, nil
}

func scanPosition(s rowScanner) (*Position, error) {
	var pos Position
	var createdAt, updatedAt int64
	if err := s.Scan(&pos.ID, &pos.PortfolioID, &pos.Symbol, &pos.Quantity, &pos.AvgCost,
		&pos.AssetClass, &pos.Sector, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	pos.CreatedAt = time.UnixMilli(createdAt).UTC()
	pos.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &pos, nil
}
