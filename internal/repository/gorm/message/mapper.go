package messagegorm

import (
	"github.com/oggyb/sms-gateway/internal/domain/message"
)

// toDomain maps a GORM MessageModel to a domain-level Message.
func toDomain(m *MessageModel) *message.Message {
	return &message.Message{
		ID:          m.ID,
		TenantID:    m.TenantID,
		PhoneNumber: m.PhoneNumber,
		Text:        m.Text,
		Kind:        message.Kind(m.Kind),
		Status:      message.Status(m.Status),
		CreatedAt:   m.CreatedAt,
		SentAt:      m.SentAt,
	}
}

// toDomainMany maps a slice of MessageModel to a slice of domain Messages.
func toDomainMany(models []MessageModel) []*message.Message {
	out := make([]*message.Message, len(models))
	for i := range models {
		out[i] = toDomain(&models[i])
	}
	return out
}

// fromDomain maps a domain-level Message to a GORM MessageModel.
func fromDomain(d *message.Message) *MessageModel {
	return &MessageModel{
		ID:          d.ID,
		TenantID:    d.TenantID,
		PhoneNumber: d.PhoneNumber,
		Text:        d.Text,
		Kind:        int(d.Kind),
		Status:      int(d.Status),
		CreatedAt:   d.CreatedAt,
		SentAt:      d.SentAt,
	}
}
