package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/auth"
	"github.com/oggyb/sms-gateway/internal/response"
)

type contextKey int

const tenantIDKey contextKey = iota

// Auth resolves the X-API-Key header to a tenant id via the given
// Authenticator and rejects the request with 401 on failure.
func Auth(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")

			tenantID, err := authenticator.Authenticate(r.Context(), apiKey)
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, "invalid or missing X-API-Key")
				return
			}

			ctx := context.WithValue(r.Context(), tenantIDKey, tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantIDFromContext returns the tenant id the Auth middleware resolved
// for this request. Only call it from handlers mounted behind Auth.
func TenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(tenantIDKey).(uuid.UUID)
	return id, ok
}

// ContextWithTenantID attaches a tenant id to ctx the same way Auth does.
// Exported for handler tests that need a request context authenticated
// without going through the real middleware.
func ContextWithTenantID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantIDKey, id)
}
