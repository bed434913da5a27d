// Package settlement implements the write-behind batch settler: delivery
// workers push an outcome onto a Redis list (writing Postgres directly only
// when that list is unreachable), and this settler periodically drains it
// and applies the tenant-facing status changes in one batched transaction.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/cache"
	"github.com/oggyb/sms-gateway/internal/domain/message"
	"github.com/rs/zerolog"
)

// Settler drains the settlement buffer and coalesces the outcomes into two
// batched status UPDATEs. It implements scheduler.BatchProcessor, so the
// same control loop that drives the outbox publisher drives it, at the
// settlement tick interval.
type Settler struct {
	repo       message.Repository
	cache      cache.Cache
	log        zerolog.Logger
	batchSize  int
	lockTTL    time.Duration
	instanceID string
}

// New constructs a Settler. batchSize bounds how many buffered outcomes a
// single tick will settle; lockTTL bounds how long a crashed settler can
// hold the cross-process tick lock.
func New(repo message.Repository, c cache.Cache, log zerolog.Logger, batchSize int, lockTTL time.Duration) *Settler {
	if batchSize <= 0 {
		batchSize = 10000
	}
	if lockTTL < lockTTLFloor {
		lockTTL = lockTTLFloor
	}

	return &Settler{
		repo:       repo,
		cache:      c,
		log:        log.With().Str("component", "settler").Logger(),
		batchSize:  batchSize,
		lockTTL:    lockTTL,
		instanceID: uuid.New().String(),
	}
}

// ProcessBatch takes the single-flight lock, drains the settlement buffer
// and applies the batch. Skipping the tick when the lock is already held
// lets multiple settler processes run for availability without
// double-applying a batch.
func (s *Settler) ProcessBatch(ctx context.Context) error {
	lockKey := cache.SettlerLock.Key("tick")
	acquired, err := s.cache.SetNX(ctx, lockKey, s.instanceID, s.lockTTL)
	if err != nil {
		return fmt.Errorf("acquire settler lock: %w", err)
	}
	if !acquired {
		return nil
	}
	defer func() { _ = s.cache.Del(context.Background(), lockKey) }()

	outcomes, err := drainBuffer(ctx, s.cache, s.batchSize)
	if err != nil {
		return fmt.Errorf("drain settlement buffer: %w", err)
	}
	if len(outcomes) == 0 {
		return nil
	}

	var sentIDs, failedIDs []uuid.UUID
	var sentAt time.Time
	for _, o := range outcomes {
		id, err := uuid.Parse(o.MessageID)
		if err != nil {
			continue
		}
		if o.Sent {
			sentIDs = append(sentIDs, id)
			if sentAt.IsZero() || o.At.Before(sentAt) {
				sentAt = o.At
			}
		} else {
			failedIDs = append(failedIDs, id)
		}
	}
	// The whole batch shares one sent_at: the earliest outcome timestamp
	// in it. Per-message precision would need per-row UPDATEs, defeating
	// the coalescing.
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	if err := s.repo.BatchUpdateStatus(ctx, sentIDs, failedIDs, sentAt); err != nil {
		return fmt.Errorf("apply settlement batch: %w", err)
	}

	s.log.Info().Int("sent", len(sentIDs)).Int("failed", len(failedIDs)).Msg("settlement batch applied")

	return nil
}
