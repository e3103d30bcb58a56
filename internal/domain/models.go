// Package domain provides core domain models and types shared across modules.
package domain

import (
	"fmt"
	"strings"
)

// Disclaimer is attached to every analytics response.
const Disclaimer = "Pragmas OS is an analytics tool. We do not execute trades or provide financial advice."

// Role is the caller's account role
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Caller is the identity resolved by the authentication boundary.
// The core never authenticates; it only consumes this.
type Caller struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the caller holds the ADMIN role
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// Side is the direction of a logged trade
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide accepts BUY or SELL in any case
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", fmt.Errorf("invalid side %q: must be BUY or SELL", s)
	}
}

// Unknown is the default asset class and sector for trades that omit them
const Unknown = "Unknown"

// NormalizeSymbol trims and upper-cases a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
