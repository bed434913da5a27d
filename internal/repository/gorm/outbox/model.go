package outboxgorm

import (
	"time"

	"github.com/google/uuid"
)

// OutboxModel is the GORM persistence model backing the transactional
// outbox table.
type OutboxModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;index"`
	Queue     string    `gorm:"size:20;not null"`
	Payload   []byte    `gorm:"type:bytea;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName overrides the default table name used by GORM.
func (OutboxModel) TableName() string {
	return "outbox"
}
