package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/otpstudio/studio-server-go/internal/audit"
	"github.com/otpstudio/studio-server-go/internal/auth"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

func GetClaims(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(ClaimsContextKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// TokenVerifier is implemented by auth.TokenService.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware guards the privileged proxy routes with a bearer token
// check. No database lookup happens here: signature and expiry decide.
type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				log.Warn().Msg("auth middleware: expired token")
			} else {
				log.Warn().Err(err).Msg("auth middleware: invalid token attempt")
			}
			audit.Log(r.Context(), audit.Event{
				Type:      audit.EventAuthFailure,
				IP:        r.RemoteAddr,
				UserAgent: r.UserAgent(),
				Details: map[string]interface{}{
					"path": r.URL.Path,
				},
			})
			writeJSON(w, http.StatusForbidden, map[string]any{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
