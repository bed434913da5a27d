package messagegorm

import (
	"time"

	"github.com/google/uuid"
)

// MessageModel is the GORM persistence model for messages.
// It maps to the "messages" table, range-partitioned by created_at, which
// is why the primary key is the composite (id, created_at): Postgres
// requires the partition key in every unique constraint on a partitioned
// table. id alone still carries its own unique index so lookups never need
// to know created_at in advance.
//
// The composite (tenant_id, created_at) and (tenant_id, status, created_at)
// indexes back ListByTenant's filter combinations; the standalone status
// and created_at indexes serve the settlement and partition-maintenance
// scans.
type MessageModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_messages_id"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_tenant_created,priority:1;index:idx_messages_tenant_status_created,priority:1"`
	PhoneNumber string    `gorm:"size:20;not null"`
	Text        string    `gorm:"size:70;not null"`
	Kind        int       `gorm:"not null"`
	Status      int       `gorm:"not null;index:idx_messages_status;index:idx_messages_tenant_status_created,priority:2"`
	CreatedAt   time.Time `gorm:"primaryKey;not null;index:idx_messages_created_at;index:idx_messages_tenant_created,priority:2;index:idx_messages_tenant_status_created,priority:3"`
	SentAt      *time.Time
}

// TableName overrides the default table name used by GORM.
func (MessageModel) TableName() string {
	return "messages"
}
