package messagegorm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/db"
	"github.com/oggyb/sms-gateway/internal/domain/message"
	"gorm.io/gorm"
)

// Repository is a GORM-backed implementation of the message.Repository interface.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a message repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{
		db: d.Conn().(*gorm.DB),
	}
}

// Insert persists a new PENDING message outside of any surrounding
// transaction. The admission service uses InsertTx when the insert must be
// atomic with a balance debit.
func (r *Repository) Insert(ctx context.Context, m *message.Message) error {
	return r.db.WithContext(ctx).Create(fromDomain(m)).Error
}

// InsertTx persists a new message using the given transaction handle,
// letting the caller group it with a tenant debit and an outbox insert.
func InsertTx(tx *gorm.DB, m *message.Message) error {
	return tx.Create(fromDomain(m)).Error
}

// Get looks up a message by id, scoped to its owning tenant.
func (r *Repository) Get(ctx context.Context, tenantID, id uuid.UUID) (*message.Message, error) {
	var model MessageModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&model).Error
	if err != nil {
		return nil, err
	}
	return toDomain(&model), nil
}

// GetByID looks up a message by id alone, with no tenant scoping. Used
// only to tell a cross-tenant lookup (403) apart from a truly missing
// message (404).
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	var model MessageModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		return nil, err
	}
	return toDomain(&model), nil
}

// ListByTenant returns a paginated, optionally status-filtered page of a
// tenant's messages, newest first.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter message.ListFilter) ([]*message.Message, int64, error) {
	var models []MessageModel
	var total int64

	query := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("tenant_id = ?", tenantID)

	if filter.Status != nil {
		query = query.Where("status = ?", int(*filter.Status))
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", int(*filter.Kind))
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	return toDomainMany(models), total, nil
}

// BatchUpdateStatus applies one settlement batch's outcome in two statements:
// one UPDATE for every message that reached SENT, one for every message that
// reached FAILED. Both target id directly, so the composite partition key
// never needs to be reconstructed by the caller.
func (r *Repository) BatchUpdateStatus(ctx context.Context, sentIDs, failedIDs []uuid.UUID, sentAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(sentIDs) > 0 {
			err := tx.Model(&MessageModel{}).
				Where("id IN ?", sentIDs).
				Updates(map[string]interface{}{
					"status":  int(message.StatusSent),
					"sent_at": sentAt,
				}).Error
			if err != nil {
				return err
			}
		}

		if len(failedIDs) > 0 {
			err := tx.Model(&MessageModel{}).
				Where("id IN ?", failedIDs).
				Update("status", int(message.StatusFailed)).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// compile-time interface check
var _ message.Repository = (*Repository)(nil)
