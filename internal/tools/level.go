// Package tools provides the registry of deterministic computation tools and
// the audited, capability-checked engine that executes them.
package tools

import (
	"fmt"
	"strings"

	"github.com/aristath/pragmas/internal/domain"
)

// Level is the minimum capability a caller needs to run a tool.
// Levels are totally ordered: LevelPublic < LevelUser < LevelAdmin.
type Level int

const (
	LevelPublic Level = iota
	LevelUser
	LevelAdmin
)

func (l Level) String() string {
	switch l {
	case LevelPublic:
		return "PUBLIC"
	case LevelUser:
		return "USER"
	case LevelAdmin:
		return "ADMIN"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// MarshalText renders the level by name in JSON
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLevel parses PUBLIC, USER or ADMIN (any case)
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "PUBLIC":
		return LevelPublic, nil
	case "USER":
		return LevelUser, nil
	case "ADMIN":
		return LevelAdmin, nil
	default:
		return 0, fmt.Errorf("unknown capability level %q", s)
	}
}

// LevelOf returns the capability granted to caller. A nil caller is anonymous.
func LevelOf(caller *domain.Caller) Level {
	switch {
	case caller == nil:
		return LevelPublic
	case caller.Role == domain.RoleAdmin:
		return LevelAdmin
	default:
		return LevelUser
	}
}

// Authorize is the single authorization check for tool execution.
func Authorize(required Level, caller *domain.Caller) error {
	if LevelOf(caller) >= required {
		return nil
	}
	if caller == nil {
		return domain.NewUnauthorizedError("Unauthorized")
	}
	return domain.NewForbiddenError("Forbidden")
}
