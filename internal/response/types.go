package response

import (
	"time"

	msgDomain "github.com/oggyb/sms-gateway/internal/domain/message"
	"github.com/oggyb/sms-gateway/internal/domain/tenant"
)

type WelcomePayload struct {
	Message string `json:"message"`
}

type HealthPayload struct {
	Status string `json:"status"`
}

// AccountDTO is the public representation of a Tenant returned by the
// account endpoints.
type AccountDTO struct {
	ID        string    `json:"id"`
	APIKey    string    `json:"api_key"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// BalancePayload is the body of GET /accounts/balance.
type BalancePayload struct {
	Balance int64 `json:"balance"`
}

// MessageDTO is the public representation of a Message returned by the
// SMS endpoints.
type MessageDTO struct {
	ID          string     `json:"id"`
	PhoneNumber string     `json:"phone_number"`
	Message     string     `json:"message"`
	SMSType     int        `json:"sms_type"`
	Status      int        `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
}

// ListMessagesPayload is the body of GET /sms.
type ListMessagesPayload struct {
	Items    []MessageDTO `json:"items"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// FromDomainAccount converts a domain Tenant into its wire representation.
func FromDomainAccount(t *tenant.Tenant) AccountDTO {
	return AccountDTO{
		ID:        t.ID.String(),
		APIKey:    t.APIKey,
		Balance:   t.Balance,
		CreatedAt: t.CreatedAt,
	}
}

// FromDomainMessage converts a domain Message into its wire representation.
func FromDomainMessage(m *msgDomain.Message) MessageDTO {
	return MessageDTO{
		ID:          m.ID.String(),
		PhoneNumber: m.PhoneNumber,
		Message:     m.Text,
		SMSType:     int(m.Kind),
		Status:      int(m.Status),
		CreatedAt:   m.CreatedAt,
		SentAt:      m.SentAt,
	}
}

// FromDomainMessages converts a slice of domain Messages into their wire
// representation, preserving order.
func FromDomainMessages(msgs []*msgDomain.Message) []MessageDTO {
	out := make([]MessageDTO, len(msgs))
	for i, m := range msgs {
		out[i] = FromDomainMessage(m)
	}
	return out
}
