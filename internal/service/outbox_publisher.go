package service

import (
	"context"
	"encoding/json"

	"github.com/oggyb/sms-gateway/internal/broker"
	"github.com/oggyb/sms-gateway/internal/domain/outbox"
	"github.com/rs/zerolog"
)

// OutboxPublisher drains the transactional outbox (C4's atomicity
// boundary) into the broker. It implements scheduler.BatchProcessor so the
// same control-loop shape driving the settlement batch settler also drives
// this poll, just against a different interval.
type OutboxPublisher struct {
	repo      outbox.Repository
	publisher broker.Publisher
	batchSize int
	log       zerolog.Logger
}

func NewOutboxPublisher(repo outbox.Repository, publisher broker.Publisher, batchSize int, log zerolog.Logger) *OutboxPublisher {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &OutboxPublisher{
		repo:      repo,
		publisher: publisher,
		batchSize: batchSize,
		log:       log.With().Str("component", "outbox_publisher").Logger(),
	}
}

// ProcessBatch publishes up to batchSize of the oldest undelivered outbox
// rows; any beyond that wait for a later tick. A row
// whose publish fails is left in place for the next tick; a row whose
// payload cannot even be decoded is dropped, since retrying it can never
// succeed.
func (p *OutboxPublisher) ProcessBatch(ctx context.Context) error {
	records, err := p.repo.ListUndelivered(ctx, p.batchSize)
	if err != nil {
		return err
	}

	for _, rec := range records {
		var env broker.Envelope
		if err := json.Unmarshal(rec.Payload, &env); err != nil {
			p.log.Error().Err(err).Str("outbox_id", rec.ID.String()).Msg("dropping outbox row with unreadable payload")
			_ = p.repo.Delete(ctx, rec.ID)
			continue
		}

		if err := p.publisher.Publish(ctx, broker.Queue(rec.Queue), env); err != nil {
			p.log.Warn().Err(err).Str("message_id", env.MessageID).Msg("outbox publish failed, will retry next tick")
			continue
		}

		if err := p.repo.Delete(ctx, rec.ID); err != nil {
			p.log.Error().Err(err).Str("outbox_id", rec.ID.String()).Msg("failed to delete delivered outbox row")
		}
	}

	return nil
}
