package tenantgorm

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/db"
	"github.com/oggyb/sms-gateway/internal/domain/tenant"
	"gorm.io/gorm"
)

// Repository is a GORM-backed implementation of the tenant.Repository interface.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a tenant repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{
		db: d.Conn().(*gorm.DB),
	}
}

// Create mints a fresh api_key and inserts a zero-balance tenant row,
// retrying key generation on a unique-constraint collision up to
// tenant.MaxKeyGenerationAttempts times.
func (r *Repository) Create(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	for attempt := 0; attempt < tenant.MaxKeyGenerationAttempts; attempt++ {
		apiKey, err := generateAPIKey()
		if err != nil {
			return nil, err
		}

		t := tenant.NewTenant(id, apiKey)
		model := fromDomain(t)

		err = r.db.WithContext(ctx).Create(model).Error
		if err == nil {
			return t, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
	}

	return nil, tenant.ErrKeyGenerationExhausted
}

// GetByAPIKey looks up a tenant by its api_key.
func (r *Repository) GetByAPIKey(ctx context.Context, apiKey string) (*tenant.Tenant, error) {
	var model TenantModel
	err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tenant.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomain(&model), nil
}

// GetByID looks up a tenant by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	var model TenantModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tenant.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomain(&model), nil
}

// Charge atomically adds amount to the tenant's balance.
func (r *Repository) Charge(ctx context.Context, id uuid.UUID, amount int64) (*tenant.Tenant, error) {
	err := r.db.WithContext(ctx).
		Model(&TenantModel{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Debit atomically subtracts amount from the tenant's balance, guarded by
// the balance >= amount predicate in the same UPDATE statement: the
// database, not a prior SELECT, is what decides whether funds are
// sufficient, so two concurrent sends can never both succeed against the
// same last dollar.
func (r *Repository) Debit(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&TenantModel{}).
		Where("id = ? AND balance >= ?", id, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DebitTx is Debit run against a caller-supplied transaction, so the
// admission service can group it with the message insert and outbox write.
func DebitTx(tx *gorm.DB, id uuid.UUID, amount int64) (bool, error) {
	res := tx.Model(&TenantModel{}).
		Where("id = ? AND balance >= ?", id, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// generateAPIKey mints a 256-bit random key, hex-encoded to 64 chars.
func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isUniqueViolation(err error) bool {
	// Match on the error text rather than importing the pgx/pgconn error
	// type: gorm wraps the driver error and the 23505 class is stable
	// across Postgres versions.
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "duplicate key value")
}

// compile-time interface check
var _ tenant.Repository = (*Repository)(nil)
