package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dilip-codes/fingerauthbackend/models"
	"github.com/dilip-codes/fingerauthbackend/repository"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// OperatorContextKey is the key used to store the operator in the request context.
	OperatorContextKey ContextKey = "operator"
)

// SessionMiddleware creates a middleware handler for bearer-token session
// authentication. It verifies the token, checks expiry, and adds the operator
// to the request context.
func SessionMiddleware(operatorRepo repository.OperatorRepositoryInterface, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authorization header format must be Bearer {token}")
			return
		}

		session, err := operatorRepo.GetSessionByToken(parts[1])
		if err != nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "invalid session token")
			return
		}
		if session.ExpiresAt < time.Now().Unix() {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "session expired")
			return
		}
		if session.Operator == nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "session has no operator")
			return
		}

		ctx := context.WithValue(r.Context(), OperatorContextKey, session.Operator)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OperatorFromContext retrieves the authenticated operator, or nil when the
// request skipped the session middleware.
func OperatorFromContext(ctx context.Context) *models.Operator {
	operator, _ := ctx.Value(OperatorContextKey).(*models.Operator)
	return operator
}
