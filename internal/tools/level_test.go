package tools

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pragmas/internal/domain"
)

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelPublic < LevelUser)
	assert.True(t, LevelUser < LevelAdmin)
}

func TestParseLevel(t *testing.T) {
	for _, l := range []Level{LevelPublic, LevelUser, LevelAdmin} {
		parsed, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}
	_, err := ParseLevel("root")
	assert.Error(t, err)
}

func TestAuthorize(t *testing.T) {
	user := &domain.Caller{ID: "u1", Role: domain.RoleUser}
	admin := &domain.Caller{ID: "a1", Role: domain.RoleAdmin}

	tests := []struct {
		name     string
		required Level
		caller   *domain.Caller
		want     error
	}{
		{"public allows anonymous", LevelPublic, nil, nil},
		{"user level rejects anonymous", LevelUser, nil, domain.ErrUnauthorized},
		{"user level allows user", LevelUser, user, nil},
		{"admin level rejects anonymous", LevelAdmin, nil, domain.ErrUnauthorized},
		{"admin level forbids user", LevelAdmin, user, domain.ErrForbidden},
		{"admin level allows admin", LevelAdmin, admin, nil},
		{"user level allows admin", LevelUser, admin, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.required, tt.caller)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
