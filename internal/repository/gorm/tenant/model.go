package tenantgorm

import (
	"time"

	"github.com/google/uuid"
)

// TenantModel is the GORM persistence model for tenants.
// It maps to the "tenants" table in Postgres.
type TenantModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	APIKey    string    `gorm:"size:64;not null;uniqueIndex"`
	Balance   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName overrides the default table name used by GORM.
func (TenantModel) TableName() string {
	return "tenants"
}
