package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stackhook/engine/internal/api/types"
	"github.com/stackhook/engine/internal/authz"
)

type authKeyType string

const AuthKey authKeyType = "authz"

// Claims are the JWT claims issued for API tokens. TeamID is absent for
// tokens not bound to a team.
type Claims struct {
	TeamID    *uint    `json:"team_id,omitempty"`
	Abilities []string `json:"abilities"`
	jwt.RegisteredClaims
}

// Auth validates a Bearer JWT using the provided HMAC secret and stores the
// resulting authz.Context on the request.
func Auth(hmacSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token.")
				return
			}
			tokenStr := strings.TrimSpace(ah[len("Bearer "):])
			var claims Claims
			token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
				return hmacSecret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token.")
				return
			}
			ac := authz.Context{TeamID: claims.TeamID, Abilities: claims.Abilities}
			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), ac)))
		})
	}
}

// RequireAbility rejects callers whose token lacks ability.
func RequireAbility(ability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetAuth(r.Context()).Can(ability) {
				writeError(w, http.StatusForbidden, "forbidden", "Missing ability: "+ability+".")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetAuth returns the caller's authorization, or an anonymous context.
func GetAuth(ctx context.Context) authz.Context {
	if v, ok := ctx.Value(AuthKey).(authz.Context); ok {
		return v
	}
	return authz.Anonymous()
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.APIResponse{Success: false, Error: &types.APIError{Code: code, Message: msg}})
}

// WithAuth returns a copy of ctx carrying ac.
func WithAuth(ctx context.Context, ac authz.Context) context.Context {
	return context.WithValue(ctx, AuthKey, ac)
}
