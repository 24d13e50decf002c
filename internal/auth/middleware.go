package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxKey int

const claimsKey ctxKey = 1

// ClaimsFromContext returns the verified claims attached by Middleware.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey).(Claims)
	return c, ok
}

// WithClaims attaches claims to a context. Exported for handler tests.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// Verifier couples JWT validation with the session liveness check.
type Verifier struct {
	JWT      JWT
	Sessions SessionStore
}

// Verify validates a bearer token end to end: signature, registered
// claims, and session liveness when the token carries a session id.
func (v Verifier) Verify(ctx context.Context, token string) (Claims, error) {
	claims, err := v.JWT.Verify(token)
	if err != nil {
		return Claims{}, err
	}

	if v.Sessions != nil && claims.ID != "" {
		active, err := v.Sessions.Active(ctx, claims.ID)
		if err != nil {
			return Claims{}, err
		}
		if !active {
			return Claims{}, ErrSessionRevoked
		}
	}

	return claims, nil
}

// Middleware rejects requests without a valid session token and injects
// the owner identity into the request context.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r.Header.Get("Authorization"))
			if tok == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}
			claims, err := v.Verify(r.Context(), tok)
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	parts := strings.SplitN(v, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
