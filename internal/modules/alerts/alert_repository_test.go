package alerts

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

func related(now time.Time) RelatedQuery {
	return RelatedQuery{
		Since:       now.Add(-RelatedWindow),
		UserID:      testingpkg.OwnerID,
		PortfolioID: testingpkg.PortfolioID,
		Symbol:      "AAPL",
		Sector:      "Tech",
	}
}

func TestFindRelated_MatchRules(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name                      string
		user, portfolio, sym, sec string
		title, message            string
		age                       time.Duration
		want                      bool
	}{
		{"portfolio field", testingpkg.OwnerID, testingpkg.PortfolioID, "", "", "x", "y", time.Hour, true},
		{"symbol field", testingpkg.OwnerID, "", "AAPL", "", "x", "y", time.Hour, true},
		{"sector field", testingpkg.OwnerID, "", "", "Tech", "x", "y", time.Hour, true},
		{"symbol in title ignoring case", testingpkg.OwnerID, "", "", "", "aapl earnings", "y", time.Hour, true},
		{"sector in message ignoring case", testingpkg.OwnerID, "", "", "", "x", "big TECH selloff", time.Hour, true},
		{"unrelated", testingpkg.OwnerID, "", "MSFT", "Energy", "oil", "crude", time.Hour, false},
		{"other user", testingpkg.OtherUserID, testingpkg.PortfolioID, "AAPL", "Tech", "AAPL", "AAPL", time.Hour, false},
		{"too old", testingpkg.OwnerID, testingpkg.PortfolioID, "AAPL", "Tech", "AAPL", "AAPL", 25 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, cleanup := testingpkg.NewTestDB(t, "ledger")
			defer cleanup()
			testingpkg.SeedAlert(t, db, "a1", tt.user, tt.portfolio, tt.sym, tt.sec, tt.title, tt.message, now.Add(-tt.age))

			repo := NewAlertRepository(db.Conn(), zerolog.Nop())
			got, err := repo.FindRelated(context.Background(), related(now))
			require.NoError(t, err)
			if tt.want {
				require.NotNil(t, got)
				assert.Equal(t, "a1", got.ID)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestFindRelated_PicksMostRecent(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "ledger")
	defer cleanup()
	now := time.Now().UTC()

	testingpkg.SeedAlert(t, db, "older", testingpkg.OwnerID, "", "AAPL", "", "t", "m", now.Add(-3*time.Hour))
	testingpkg.SeedAlert(t, db, "newer", testingpkg.OwnerID, "", "", "Tech", "t", "m", now.Add(-time.Hour))
	testingpkg.SeedAlert(t, db, "foreign", testingpkg.OtherUserID, "", "AAPL", "", "t", "m", now)

	got, err := NewAlertRepository(db.Conn(), zerolog.Nop()).FindRelated(context.Background(), related(now))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "newer", got.ID)
}

func TestMarkRead_IsOwnerScoped(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "ledger")
	defer cleanup()
	now := time.Now().UTC()
	testingpkg.SeedAlert(t, db, "a1", testingpkg.OwnerID, "", "AAPL", "", "t", "m", now)

	repo := NewAlertRepository(db.Conn(), zerolog.Nop())
	ctx := context.Background()

	err := repo.MarkRead(ctx, "a1", testingpkg.OtherUserID, now)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.MarkRead(ctx, "a1", testingpkg.OwnerID, now))

	list, err := repo.ListByUser(ctx, testingpkg.OwnerID, 50)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ReadAt)
	assert.Equal(t, now.UnixMilli(), list[0].ReadAt.UnixMilli())
}

func TestCreate_RoundTripsData(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "ledger")
	defer cleanup()
	repo := NewAlertRepository(db.Conn(), zerolog.Nop())
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, Alert{
		ID: "a1", UserID: testingpkg.OwnerID, Symbol: "AAPL", Type: TypeReturnAnomaly,
		Title: "t", Message: "m", Data: map[string]interface{}{"z": 4.2}, CreatedAt: now,
	}))

	list, err := repo.ListByUser(ctx, testingpkg.OwnerID, 50)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 4.2, list[0].Data["z"])
	assert.Empty(t, list[0].PortfolioID)
	assert.Nil(t, list[0].ReadAt)

	exists, err := repo.ExistsRecent(ctx, "", "AAPL", TypeReturnAnomaly, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, exists, "NULL portfolio never matches")
}
