package risk

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/database"
	"github.com/aristath/pragmas/internal/utils"
)

// SnapshotRepository handles risk_snapshots in ledger.db
type SnapshotRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// snapshotColumns is the list of columns for the risk_snapshots table
// Column order must match scanSnapshot()
const snapshotColumns = `id, portfolio_id, var_proxy, beta, exposure_json, timestamp, created_at`

// NewSnapshotRepository creates a new risk snapshot repository
func NewSnapshotRepository(db database.Querier, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:  db,
		log: log.With().Str("repo", "risk_snapshot").Logger(),
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *SnapshotRepository) WithTx(tx database.Querier) *SnapshotRepository {
	return &SnapshotRepository{db: tx, log: r.log}
}

// Create persists a snapshot. Money values are rounded to 8 places.
func (r *SnapshotRepository) Create(ctx context.Context, s Snapshot) error {
	rounded := make(map[string]float64, len(s.Exposure))
	for sector, value := range s.Exposure {
		rounded[sector] = utils.Round8(value)
	}
	exposureJSON, err := json.Marshal(rounded)
	if err != nil {
		return fmt.Errorf("failed to marshal exposure: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO risk_snapshots (id, portfolio_id, var_proxy, beta, exposure_json, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID,
		s.PortfolioID,
		utils.Round8(s.VaRProxy),
		s.Beta,
		string(exposureJSON),
		s.Timestamp.UnixMilli(),
		s.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create risk snapshot: %w", err)
	}

	r.log.Debug().
		Str("portfolio_id", s.PortfolioID).
		Float64("var_proxy", s.VaRProxy).
		Msg("Risk snapshot created")
	return nil
}

// GetByID returns a snapshot or nil
func (r *SnapshotRepository) GetByID(ctx context.Context, id string) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+snapshotColumns+" FROM risk_snapshots WHERE id = ?", id)
	s, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get risk snapshot: %w", err)
	}
	return s, nil
}

// ListByPortfolio returns the most recent snapshots of a portfolio, newest first
func (r *SnapshotRepository) ListByPortfolio(ctx context.Context, portfolioID string, limit int) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+` FROM risk_snapshots
		WHERE portfolio_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`, portfolioID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan risk snapshot: %w", err)
		}
		snapshots = append(snapshots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating risk snapshots: %w", err)
	}
	return snapshots, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(s rowScanner) (*Snapshot, error) {
	var snap Snapshot
	var exposureJSON string
	var timestamp, createdAt int64
	if err := s.Scan(&snap.ID, &snap.PortfolioID, &snap.VaRProxy, &snap.Beta, &exposureJSON, &timestamp, &createdAt); err != nil {
		return nil, err
	}
	exposure, err := DecodeExposure(exposureJSON)
	if err != nil {
		return nil, err
	}
	snap.Exposure = exposure
	snap.Timestamp = time.UnixMilli(timestamp).UTC()
	snap.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &snap, nil
}

// DecodeExposure parses a stored exposure_json column
func DecodeExposure(raw string) (map[string]float64, error) {
	exposure := make(map[string]float64)
	if raw == "" {
		return exposure, nil
	}
	if err := json.Unmarshal([]byte(raw), &exposure); err != nil {
		return nil, fmt.Errorf("failed to unmarshal exposure: %w", err)
	}
	return exposure, nil
}
