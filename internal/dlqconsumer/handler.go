// Package dlqconsumer subscribes to the dead-letter queue and records each
// terminally-failed message for operational visibility.
package dlqconsumer

import (
	"context"

	"github.com/oggyb/sms-gateway/internal/broker"
	"github.com/rs/zerolog"
)

// Consumer drains the dlq subject and logs every entry at error level.
type Consumer struct {
	consumer broker.Consumer
	log      zerolog.Logger
}

func New(consumer broker.Consumer, log zerolog.Logger) *Consumer {
	return &Consumer{consumer: consumer, log: log.With().Str("component", "dlq").Logger()}
}

// Run blocks draining the dlq subject until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.consumer.Consume(ctx, broker.QueueDLQ, c.handle)
}

func (c *Consumer) handle(ctx context.Context, env broker.Envelope, deliveryCount int) broker.Outcome {
	c.log.Error().
		Str("message_id", env.MessageID).
		Str("tenant_id", env.TenantID).
		Str("phone_number", env.PhoneNumber).
		Time("enqueued_at", env.EnqueuedAt).
		Msg("message dead-lettered")

	return broker.OutcomeAck
}
