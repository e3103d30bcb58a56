package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("loading portfolio: %w", NewNotFoundError("Portfolio not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NewValidationError("bad", nil), http.StatusBadRequest},
		{NewUnauthorizedError("no caller"), http.StatusUnauthorized},
		{NewForbiddenError("admin only"), http.StatusForbidden},
		{NewNotFoundError("missing"), http.StatusNotFound},
		{NewDependencyMissingError("tool missing"), http.StatusInternalServerError},
		{NewPersistenceError("insert failed", errors.New("disk I/O")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestPublicMessage_HidesInternalCauses(t *testing.T) {
	err := NewPersistenceError("insert trade", errors.New("UNIQUE constraint failed: secret detail"))
	assert.Equal(t, "Internal server error", PublicMessage(err))
	assert.Equal(t, "Portfolio not found", PublicMessage(NewNotFoundError("Portfolio not found")))
}

func TestParseSide(t *testing.T) {
	side, err := ParseSide(" buy ")
	assert.NoError(t, err)
	assert.Equal(t, SideBuy, side)

	_, err = ParseSide("short")
	assert.Error(t, err)
}
