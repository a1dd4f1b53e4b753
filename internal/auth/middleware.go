package auth

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey struct{}

// Middleware verifies the Authorization header and stores the caller
// identity on the request context. Requests without a valid credential are
// rejected with 401.
func Middleware(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := VerifyToken(secret, r.Header.Get("Authorization"))
			if err != nil {
				logger.Warn("[AUTH] Rejected request", "path", r.URL.Path, "error", err)
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the identity stored by Middleware, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(contextKey{}).(*Identity)
	return identity, ok
}
