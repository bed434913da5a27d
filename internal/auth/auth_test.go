package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/cache"
	"github.com/oggyb/sms-gateway/internal/domain/tenant"
)

// fakeCache implements cache.Cache over a map, counting writes.
type fakeCache struct {
	kv   map[string]string
	sets int
}

func newFakeCache() *fakeCache { return &fakeCache{kv: map[string]string{}} }

func (f *fakeCache) Ping(ctx context.Context) error { return nil }
func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.kv[key] = value
	f.sets++
	return nil
}
func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.kv[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (f *fakeCache) Del(ctx context.Context, key string) error {
	delete(f.kv, key)
	return nil
}
func (f *fakeCache) Incr(ctx context.Context, key string) (int64, error) { return 0, nil }
func (f *fakeCache) Decr(ctx context.Context, key string) (int64, error) { return 0, nil }
func (f *fakeCache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if _, ok := f.kv[key]; ok {
		return false, nil
	}
	f.kv[key] = value
	return true, nil
}
func (f *fakeCache) LPush(ctx context.Context, key, value string) error { return nil }
func (f *fakeCache) RPop(ctx context.Context, key string) (string, error) { return "", nil }

var _ cache.Cache = (*fakeCache)(nil)

// fakeTenantRepo resolves api keys from a map and counts lookups.
type fakeTenantRepo struct {
	byKey   map[string]*tenant.Tenant
	lookups int
}

func (f *fakeTenantRepo) Create(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeTenantRepo) GetByAPIKey(ctx context.Context, apiKey string) (*tenant.Tenant, error) {
	f.lookups++
	t, ok := f.byKey[apiKey]
	if !ok {
		return nil, tenant.ErrNotFound
	}
	return t, nil
}
func (f *fakeTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return nil, tenant.ErrNotFound
}
func (f *fakeTenantRepo) Charge(ctx context.Context, id uuid.UUID, amount int64) (*tenant.Tenant, error) {
	return nil, tenant.ErrNotFound
}
func (f *fakeTenantRepo) Debit(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	return false, nil
}

var _ tenant.Repository = (*fakeTenantRepo)(nil)

func TestAuthenticator_MissLoadsAndCaches(t *testing.T) {
	want := tenant.NewTenant(uuid.New(), "key-1")
	repo := &fakeTenantRepo{byKey: map[string]*tenant.Tenant{"key-1": want}}
	c := newFakeCache()
	a := New(repo, c)

	got, err := a.Authenticate(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if got != want.ID {
		t.Fatalf("tenant id = %s, want %s", got, want.ID)
	}
	if c.sets != 1 {
		t.Fatalf("cache writes = %d, want 1 (write-through on miss)", c.sets)
	}
}

func TestAuthenticator_HitSkipsRepository(t *testing.T) {
	want := tenant.NewTenant(uuid.New(), "key-2")
	repo := &fakeTenantRepo{byKey: map[string]*tenant.Tenant{"key-2": want}}
	c := newFakeCache()
	a := New(repo, c)

	if _, err := a.Authenticate(context.Background(), "key-2"); err != nil {
		t.Fatalf("first Authenticate returned error: %v", err)
	}
	got, err := a.Authenticate(context.Background(), "key-2")
	if err != nil {
		t.Fatalf("second Authenticate returned error: %v", err)
	}
	if got != want.ID {
		t.Fatalf("tenant id = %s, want %s", got, want.ID)
	}
	if repo.lookups != 1 {
		t.Fatalf("repository lookups = %d, want 1 (second call must hit the cache)", repo.lookups)
	}
}

func TestAuthenticator_UnknownKey(t *testing.T) {
	a := New(&fakeTenantRepo{byKey: map[string]*tenant.Tenant{}}, newFakeCache())

	_, err := a.Authenticate(context.Background(), "nope")
	if !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("Authenticate(unknown) = %v, want ErrInvalidAPIKey", err)
	}
}

func TestAuthenticator_EmptyKey(t *testing.T) {
	repo := &fakeTenantRepo{byKey: map[string]*tenant.Tenant{}}
	a := New(repo, newFakeCache())

	if _, err := a.Authenticate(context.Background(), ""); !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("Authenticate(\"\") = %v, want ErrInvalidAPIKey", err)
	}
	if repo.lookups != 0 {
		t.Fatalf("repository consulted for an empty key")
	}
}
