package tenant

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for Tenant aggregates.
//
// Balance mutations are never read-modify-write in application code: Charge
// and Debit are each a single atomic UPDATE, so the repository — not the
// caller — is the sole authority on whether a debit succeeded.
type Repository interface {
	// Create generates a fresh api_key and inserts a tenant row with
	// balance=0, retrying key generation up to MaxKeyGenerationAttempts
	// times on a unique-constraint collision.
	Create(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// GetByAPIKey looks up a tenant by its api_key.
	GetByAPIKey(ctx context.Context, apiKey string) (*Tenant, error)

	// GetByID looks up a tenant by id.
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// Charge atomically adds amount to the tenant's balance and returns the
	// refreshed row.
	Charge(ctx context.Context, id uuid.UUID, amount int64) (*Tenant, error)

	// Debit atomically subtracts amount from the tenant's balance, but only
	// if balance >= amount. Reports whether exactly one row was updated —
	// this is the sole guarantee that balance never goes negative under
	// concurrent sends.
	Debit(ctx context.Context, id uuid.UUID, amount int64) (bool, error)
}
