package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/domain"
)

// SessionCookie is the cookie consulted when no Authorization header is sent
const SessionCookie = "pragmas_session"

type contextKey string

const callerKey contextKey = "caller"

// WithCaller stores caller in ctx
func WithCaller(ctx context.Context, caller *domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns the authenticated caller, or nil when anonymous
func CallerFromContext(ctx context.Context) *domain.Caller {
	caller, _ := ctx.Value(callerKey).(*domain.Caller)
	return caller
}

// Middleware resolves the caller for each request
type Middleware struct {
	tokens *TokenManager
	log    zerolog.Logger
}

// NewMiddleware creates the auth middleware
func NewMiddleware(tokens *TokenManager, log zerolog.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		log:    log.With().Str("component", "auth").Logger(),
	}
}

// Identify attaches the caller when a valid token is present and lets
// anonymous requests through. An invalid token is rejected outright.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		caller, err := m.tokens.Verify(token)
		if err != nil {
			m.log.Debug().Err(err).Msg("Rejected session token")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// RequireCaller rejects anonymous requests with 401
func RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CallerFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects callers without role with 403 (401 when anonymous)
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := CallerFromContext(r.Context())
			if caller == nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if caller.Role != role {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
