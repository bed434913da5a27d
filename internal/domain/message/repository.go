package message

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows a tenant's message history query. Every field is
// optional; a nil/zero field means "no constraint".
type ListFilter struct {
	Status    *Status
	Kind      *Kind
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// Repository defines the persistence operations for Message aggregates.
//
// It is implemented by infrastructure layers (GORM here) while the domain
// and service layers depend only on this interface.
type Repository interface {
	// Insert persists a new PENDING message. Callers that need the insert to
	// share a transaction with a balance debit and an outbox row use
	// InsertTx instead.
	Insert(ctx context.Context, m *Message) error

	// Get looks up a message by id, scoped to the owning tenant so one
	// tenant can never read another's message by guessing an id.
	Get(ctx context.Context, tenantID, id uuid.UUID) (*Message, error)

	// GetByID looks up a message by id alone, with no tenant scoping. It
	// exists only so a handler can distinguish "no such message" (404)
	// from "this message belongs to a different tenant" (403); it must
	// never be used to serve message content across a tenant boundary.
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)

	// ListByTenant returns a paginated, optionally status-filtered page of a
	// tenant's messages, newest first, plus the total matching count.
	ListByTenant(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]*Message, int64, error)

	// BatchUpdateStatus applies the outcome of one settlement batch in a
	// single statement per outcome class: every id in sentIDs becomes SENT
	// with sentAt, every id in failedIDs becomes FAILED. Either slice may be
	// empty.
	BatchUpdateStatus(ctx context.Context, sentIDs, failedIDs []uuid.UUID, sentAt time.Time) error
}
