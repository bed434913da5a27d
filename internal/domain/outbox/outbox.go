// Package outbox holds the domain model for the transactional outbox used
// to bridge the admission-path database write and the broker publish.
//
// A row is written in the same transaction as the tenant debit and the
// message insert (C4). A separate publisher drains rows and forwards them
// to the broker, deleting each row only once the publish is acknowledged.
// This trades an at-least-once publish (the publisher may crash between
// broker ack and row delete) for never silently losing an admitted message,
// which is the failure mode the sweeper alternative cannot rule out.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one pending publish: a message admitted onto a queue that has
// not yet been confirmed delivered to the broker.
type Record struct {
	ID        uuid.UUID
	MessageID uuid.UUID
	Queue     string
	Payload   []byte
	CreatedAt time.Time
}

// Repository defines the persistence operations for outbox rows.
type Repository interface {
	// ListUndelivered returns up to limit of the oldest outbox rows, used by
	// the publisher's poll loop.
	ListUndelivered(ctx context.Context, limit int) ([]*Record, error)

	// Delete removes a row once its payload has been published successfully.
	Delete(ctx context.Context, id uuid.UUID) error
}
