// Package worker drains the express and regular delivery queues, dispatches
// each message to the upstream operators, and records the outcome on the
// write-behind settlement buffer, falling back to a direct status UPDATE in
// Postgres only when the buffer is unreachable.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/broker"
	"github.com/oggyb/sms-gateway/internal/cache"
	"github.com/oggyb/sms-gateway/internal/domain/message"
	"github.com/oggyb/sms-gateway/internal/operator"
	"github.com/rs/zerolog"
)

// Outcome is the JSON record each worker pushes onto the settlement buffer.
type Outcome struct {
	MessageID string    `json:"message_id"`
	Sent      bool      `json:"sent"`
	At        time.Time `json:"at"`
}

// Dispatcher is the upstream-operator port the pool drives per envelope.
// *operator.Dispatcher satisfies it.
type Dispatcher interface {
	Send(ctx context.Context, messageID, phoneNumber, text string) (*operator.SendResult, error)
}

// maxDeliveries bounds broker redeliveries for process-level faults; an
// envelope still failing on its last delivery is settled FAILED and
// forwarded to the dead-letter queue.
const maxDeliveries = 3

// Pool runs a fixed number of concurrent consumers against one queue.
type Pool struct {
	queue      broker.Queue
	consumer   broker.Consumer
	dlq        broker.DLQPublisher
	dispatcher Dispatcher
	cache      cache.Cache
	repo       message.Repository
	log        zerolog.Logger
	workers    int
}

func New(queue broker.Queue, consumer broker.Consumer, dlq broker.DLQPublisher, dispatcher Dispatcher, c cache.Cache, repo message.Repository, log zerolog.Logger, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		queue:      queue,
		consumer:   consumer,
		dlq:        dlq,
		dispatcher: dispatcher,
		cache:      c,
		repo:       repo,
		log:        log.With().Str("queue", string(queue)).Logger(),
		workers:    workers,
	}
}

// Run starts the pool's worker goroutines and blocks until ctx is
// cancelled or one of them returns an error.
func (p *Pool) Run(ctx context.Context) error {
	errCh := make(chan error, p.workers)

	for i := 0; i < p.workers; i++ {
		go func() {
			errCh <- p.consumer.Consume(ctx, p.queue, p.handle)
		}()
	}

	for i := 0; i < p.workers; i++ {
		if err := <-errCh; err != nil && ctx.Err() == nil {
			return err
		}
	}
	return nil
}

// handle dispatches one envelope and records its terminal outcome. The
// envelope is only acked once the outcome is buffered or written directly,
// so a crash mid-flight redelivers instead of losing the message. Because
// of that, an envelope can reach the operators more than once; the message
// id rides along as an idempotency key for operators that honor one.
func (p *Pool) handle(ctx context.Context, env broker.Envelope, deliveryCount int) broker.Outcome {
	result, err := p.dispatcher.Send(ctx, env.MessageID, env.PhoneNumber, env.Text)

	switch {
	case err == nil:
		p.log.Debug().Str("message_id", env.MessageID).Str("operator_message_id", result.MessageID).Msg("dispatch succeeded")
		return p.finalize(ctx, env.MessageID, true)

	case errors.Is(err, operator.ErrAllOperatorsFailed):
		// Every operator exhausted its retry budget: a terminal FAILED,
		// not a pipeline fault. Settle and ack; redelivery would only
		// repeat the same operator sweep.
		p.log.Warn().Err(err).Str("message_id", env.MessageID).Msg("all operators exhausted, marking failed")
		return p.finalize(ctx, env.MessageID, false)

	default:
		p.log.Warn().Err(err).Str("message_id", env.MessageID).Int("delivery", deliveryCount).Msg("dispatch fault")

		if deliveryCount >= maxDeliveries {
			if p.dlq != nil {
				_ = p.dlq.PublishDLQ(ctx, broker.DLQEntry{
					Envelope: env,
					Reason:   err.Error(),
					FailedAt: time.Now(),
				})
			}
			out := p.finalize(ctx, env.MessageID, false)
			if out != broker.OutcomeAck {
				return out
			}
			return broker.OutcomeDeadLetter
		}
		return broker.OutcomeRetry
	}
}

// finalize records the terminal outcome before allowing the ack: first the
// settlement buffer, then a direct single-message status UPDATE when the
// buffer is unreachable. If neither path succeeds the envelope is Nak'd so
// the broker redelivers it.
func (p *Pool) finalize(ctx context.Context, messageID string, sent bool) broker.Outcome {
	if err := p.settle(ctx, messageID, sent); err != nil {
		p.log.Error().Err(err).Str("message_id", messageID).Msg("could not record outcome, requeueing")
		return broker.OutcomeRetry
	}
	return broker.OutcomeAck
}

func (p *Pool) settle(ctx context.Context, messageID string, sent bool) error {
	rec := Outcome{MessageID: messageID, Sent: sent, At: time.Now()}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	pushErr := p.cache.LPush(ctx, string(cache.SettlementBuffer), string(data))
	if pushErr == nil {
		return nil
	}
	p.log.Warn().Err(pushErr).Str("message_id", messageID).Msg("settlement buffer unreachable, writing status directly")

	id, err := uuid.Parse(messageID)
	if err != nil {
		return err
	}
	if sent {
		return p.repo.BatchUpdateStatus(ctx, []uuid.UUID{id}, nil, rec.At)
	}
	return p.repo.BatchUpdateStatus(ctx, nil, []uuid.UUID{id}, rec.At)
}
