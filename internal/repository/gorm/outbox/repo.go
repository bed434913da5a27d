package outboxgorm

import (
	"context"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/db"
	"github.com/oggyb/sms-gateway/internal/domain/outbox"
	"gorm.io/gorm"
)

// Repository is a GORM-backed implementation of the outbox.Repository interface.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an outbox repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{db: d.Conn().(*gorm.DB)}
}

// InsertTx writes an outbox row using the given transaction, so the
// admission service can group it with the tenant debit and message insert.
func InsertTx(tx *gorm.DB, rec *outbox.Record) error {
	model := &OutboxModel{
		ID:        rec.ID,
		MessageID: rec.MessageID,
		Queue:     rec.Queue,
		Payload:   rec.Payload,
		CreatedAt: rec.CreatedAt,
	}
	return tx.Create(model).Error
}

// ListUndelivered returns the oldest undelivered rows, oldest first so the
// publisher drains admissions roughly in arrival order.
func (r *Repository) ListUndelivered(ctx context.Context, limit int) ([]*outbox.Record, error) {
	var models []OutboxModel
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]*outbox.Record, len(models))
	for i, m := range models {
		out[i] = &outbox.Record{
			ID:        m.ID,
			MessageID: m.MessageID,
			Queue:     m.Queue,
			Payload:   m.Payload,
			CreatedAt: m.CreatedAt,
		}
	}
	return out, nil
}

// Delete removes a row once its payload has been published successfully.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&OutboxModel{}, "id = ?", id).Error
}

var _ outbox.Repository = (*Repository)(nil)
