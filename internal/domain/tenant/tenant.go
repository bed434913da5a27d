// Package tenant holds the domain model and invariants for prepaid tenants.
package tenant

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyExists is returned when a tenant id has already been admitted.
	ErrAlreadyExists = errors.New("tenant already exists")
	// ErrNotFound is returned when a tenant cannot be located.
	ErrNotFound = errors.New("tenant not found")
	// ErrKeyGenerationExhausted is returned when every attempt at minting a
	// unique API key collided with an existing one.
	ErrKeyGenerationExhausted = errors.New("exhausted api key generation attempts")
	// ErrInvalidAmount is returned when charge/debit is called with amount <= 0.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// MaxKeyGenerationAttempts bounds how many times Create retries api_key
// generation on a unique-constraint collision before giving up.
const MaxKeyGenerationAttempts = 5

// Tenant is the core domain entity representing a prepaid API consumer.
type Tenant struct {
	ID        uuid.UUID
	APIKey    string
	Balance   int64
	CreatedAt time.Time
}

// NewTenant constructs a pending Tenant ready for persistence. The caller
// supplies the id (minted upstream, never by this service) and a freshly
// generated api_key.
func NewTenant(id uuid.UUID, apiKey string) *Tenant {
	return &Tenant{
		ID:        id,
		APIKey:    apiKey,
		Balance:   0,
		CreatedAt: time.Now(),
	}
}
