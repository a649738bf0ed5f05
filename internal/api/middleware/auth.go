package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/maika/internal/api/shared"
	"github.com/phrazzld/maika/internal/auth"
)

// AuthMiddleware requires a valid webhook bearer token.
type AuthMiddleware struct {
	tokens auth.TokenService
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(tokens auth.TokenService) *AuthMiddleware {
	if tokens == nil {
		panic("token service cannot be nil")
	}
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate validates the Authorization header and records the caller in
// the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.tokens.ValidateToken(r.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrExpiredToken):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			return
		case errors.Is(err, auth.ErrInvalidToken),
			errors.Is(err, auth.ErrWrongTokenType),
			errors.Is(err, auth.ErrTokenNotYetValid),
			errors.Is(err, auth.ErrMissingToken):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		default:
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.SetCaller(r.Context(), claims.Subject)))
	})
}
