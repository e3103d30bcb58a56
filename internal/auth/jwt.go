// Package auth resolves the caller identity from a signed session token.
// Issuing sessions (signup, login) happens elsewhere; this package only
// verifies tokens and exposes the resulting domain.Caller.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aristath/pragmas/internal/domain"
)

var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidSigningMethod = errors.New("invalid signing method")
)

// Claims carried by a session token
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HMAC session tokens
type TokenManager struct {
	secretKey []byte
	expiry    time.Duration
}

// NewTokenManager creates a token manager
func NewTokenManager(secretKey string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secretKey: []byte(secretKey),
		expiry:    expiry,
	}
}

// Sign issues a token for caller
func (m *TokenManager) Sign(caller domain.Caller) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: caller.ID,
		Email:  caller.Email,
		Role:   string(caller.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns the caller it identifies
func (m *TokenManager) Verify(tokenString string) (*domain.Caller, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return nil, ErrInvalidToken
	}

	return &domain.Caller{ID: claims.UserID, Email: claims.Email, Role: role}, nil
}
