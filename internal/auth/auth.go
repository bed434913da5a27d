// Package auth authenticates inbound requests by their X-API-Key header,
// caching the tenant lookup with a cache-aside read through internal/cache
// bounded by a TTL, falling back to the tenant repository on a miss.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/cache"
	"github.com/oggyb/sms-gateway/internal/domain/tenant"
)

// CacheTTL bounds how long a tenant id is trusted from cache before the
// authenticator re-checks the database. A revoked or deleted tenant can
// remain briefly authenticatable within this window.
const CacheTTL = 12 * time.Hour

var ErrInvalidAPIKey = errors.New("invalid api key")

// Authenticator resolves an API key to a tenant id.
type Authenticator struct {
	repo  tenant.Repository
	cache cache.Cache
}

func New(repo tenant.Repository, c cache.Cache) *Authenticator {
	return &Authenticator{repo: repo, cache: c}
}

// Authenticate returns the tenant id owning apiKey, or ErrInvalidAPIKey.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (uuid.UUID, error) {
	if apiKey == "" {
		return uuid.Nil, ErrInvalidAPIKey
	}

	key := cache.AuthTenant.Key(apiKey)

	if cached, err := a.cache.Get(ctx, key); err == nil && cached != "" {
		if id, parseErr := uuid.Parse(cached); parseErr == nil {
			return id, nil
		}
	}

	t, err := a.repo.GetByAPIKey(ctx, apiKey)
	if errors.Is(err, tenant.ErrNotFound) {
		return uuid.Nil, ErrInvalidAPIKey
	}
	if err != nil {
		return uuid.Nil, err
	}

	_ = a.cache.Set(ctx, key, t.ID.String(), CacheTTL)

	return t.ID, nil
}
