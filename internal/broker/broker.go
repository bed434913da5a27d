// Package broker defines the message-queue port used to admit messages onto
// the express/regular delivery queues and the dead-letter queue.
package broker

import (
	"context"
	"time"
)

// Queue names the work-queue subjects the gateway publishes and consumes.
type Queue string

const (
	QueueExpress Queue = "express"
	QueueRegular Queue = "regular"
	QueueDLQ     Queue = "dlq"
)

// Envelope is the wire format carried on every queue: the delivery worker
// and the DLQ consumer only ever see this, never a raw domain message.
type Envelope struct {
	MessageID   string    `json:"message_id"`
	TenantID    string    `json:"tenant_id"`
	PhoneNumber string    `json:"phone_number"`
	Text        string    `json:"message"`
	SMSType     int       `json:"sms_type"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// DLQEntry is the payload forwarded to the DLQ when a delivery worker's
// dispatch is still faulting on the final allowed delivery. Operator
// exhaustion is a terminal FAILED outcome and is not dead-lettered.
type DLQEntry struct {
	Envelope Envelope  `json:"envelope"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

// Handler processes one delivered message. Ack/Nak/Term decisions are left
// to the caller via the returned Outcome; the broker implementation
// translates Outcome into its own redelivery semantics.
type Handler func(ctx context.Context, env Envelope, deliveryCount int) Outcome

// Outcome tells the broker how to resolve a delivered message.
type Outcome int

const (
	// OutcomeAck confirms the message was handled and should not redeliver.
	OutcomeAck Outcome = iota
	// OutcomeRetry asks for redelivery using the broker's own backoff policy.
	OutcomeRetry
	// OutcomeDeadLetter terminates delivery after forwarding to the DLQ.
	OutcomeDeadLetter
)

// Publisher admits messages onto a queue.
type Publisher interface {
	Publish(ctx context.Context, queue Queue, env Envelope) error
}

// DLQPublisher forwards an exhausted message to the dead-letter queue.
type DLQPublisher interface {
	PublishDLQ(ctx context.Context, entry DLQEntry) error
}

// Consumer drives Handler for every message delivered on a queue until ctx
// is cancelled.
type Consumer interface {
	Consume(ctx context.Context, queue Queue, h Handler) error
}
