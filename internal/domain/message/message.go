// Package message holds the domain model and invariants for SMS messages.
package message

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MinPhoneLength and MaxPhoneLength bound phone_number after stripping
	// the +/-/space separators.
	MinPhoneLength = 10
	MaxPhoneLength = 20
	// MaxTextLength is the single-segment GSM length limit.
	MaxTextLength = 70
)

// Kind distinguishes the two delivery priority classes.
type Kind int

const (
	KindRegular Kind = 1
	KindExpress Kind = 2
)

func (k Kind) Valid() bool { return k == KindRegular || k == KindExpress }

// QueueName maps a Kind to the broker queue it is admitted onto.
func (k Kind) QueueName() string {
	if k == KindExpress {
		return "express"
	}
	return "regular"
}

// Status is the small-integer wire/DB/buffer representation used
// everywhere a message's delivery state is tracked.
type Status int

const (
	StatusPending Status = 1
	StatusSent    Status = 2
	StatusFailed  Status = 3
)

var (
	ErrEmptyPhone      = errors.New("phone_number is required")
	ErrPhoneLength     = errors.New("phone_number must be 10-20 characters after stripping")
	ErrPhoneCharset    = errors.New("phone_number must contain only digits, spaces, hyphens, or a leading plus sign")
	ErrEmptyText       = errors.New("message text is required")
	ErrTextTooLong     = errors.New("message text exceeds maximum length")
	ErrInvalidKind     = errors.New("sms_type must be 1 (regular) or 2 (express)")
	ErrAlreadyTerminal = errors.New("message has already reached a terminal status")
)

// Message is the core domain entity representing an outgoing SMS.
type Message struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	PhoneNumber string
	Text        string
	Kind        Kind
	Status      Status
	CreatedAt   time.Time
	SentAt      *time.Time
}

// NewMessage constructs a new PENDING message, enforcing the phone, text
// and kind validation rules.
func NewMessage(tenantID uuid.UUID, phoneNumber, text string, kind Kind) (*Message, error) {
	if err := Validate(phoneNumber, text, kind); err != nil {
		return nil, err
	}

	return &Message{
		ID:          uuid.New(),
		TenantID:    tenantID,
		PhoneNumber: phoneNumber,
		Text:        text,
		Kind:        kind,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}, nil
}

// Validate enforces phone/text/kind invariants independent of construction,
// so handlers can validate a request before touching the tenant balance.
func Validate(phoneNumber, text string, kind Kind) error {
	if phoneNumber == "" {
		return ErrEmptyPhone
	}
	stripped := strings.NewReplacer("+", "", "-", "", " ", "").Replace(phoneNumber)
	if len(stripped) < MinPhoneLength || len(stripped) > MaxPhoneLength {
		return ErrPhoneLength
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return ErrPhoneCharset
		}
	}

	if text == "" {
		return ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return ErrTextTooLong
	}

	if !kind.Valid() {
		return ErrInvalidKind
	}

	return nil
}

// MarkSent transitions the message to its terminal SENT state. Status
// transitions are monotonic: calling this on an already-terminal message
// is a caller bug, not silently corrected.
func (m *Message) MarkSent(sentAt time.Time) error {
	if m.Status != StatusPending {
		return ErrAlreadyTerminal
	}
	m.Status = StatusSent
	m.SentAt = &sentAt
	return nil
}

// MarkFailed transitions the message to its terminal FAILED state.
func (m *Message) MarkFailed() error {
	if m.Status != StatusPending {
		return ErrAlreadyTerminal
	}
	m.Status = StatusFailed
	return nil
}
