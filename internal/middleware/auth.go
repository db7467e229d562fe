package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// TokenVerifier resolves a bearer token to an authenticated user ID.
// auth.TokenManager satisfies this.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// userIDKey is the context key for the authenticated user's ID.
// An unexported struct type cannot collide with keys from other packages.
type userIDKey struct{}

// UserID returns the authenticated user's ID from the request context.
// The second return value is false when the auth middleware has not run
// (public routes) or authentication failed.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok
}

// WithUserID returns a context carrying the given user ID.
// Exported for handler tests, which have no middleware stack.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// NewAuthHandler returns a middleware that requires a valid
// "Authorization: Bearer <token>" header and stores the resolved user ID in
// the request context. Requests without a valid token get 401 with the same
// JSON error envelope the handlers use.
func NewAuthHandler(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "authorization token required")
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"unauthorized","message":"` + message + `"}}`))
}
