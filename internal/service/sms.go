package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/broker"
	"github.com/oggyb/sms-gateway/internal/db"
	msgDomain "github.com/oggyb/sms-gateway/internal/domain/message"
	"github.com/oggyb/sms-gateway/internal/domain/outbox"
	messagegorm "github.com/oggyb/sms-gateway/internal/repository/gorm/message"
	outboxgorm "github.com/oggyb/sms-gateway/internal/repository/gorm/outbox"
	tenantgorm "github.com/oggyb/sms-gateway/internal/repository/gorm/tenant"
	"github.com/oggyb/sms-gateway/internal/repository/gorm/txrunner"
	"gorm.io/gorm"
)

// ErrInsufficientBalance is returned by Send when the tenant's balance
// cannot cover the one-unit debit. It is the HTTP layer's 402 signal: the
// repository's conditional UPDATE affecting zero rows is the sole source
// of truth for this decision, never a prior balance read.
var ErrInsufficientBalance = errors.New("insufficient balance")

const sendCost = 1

// SMSService is the admission (C4) and message-query surface used by the
// /sms endpoints.
type SMSService interface {
	// Send debits the tenant, persists a PENDING message and an outbox row
	// atomically, and returns the admitted message. The broker publish
	// itself happens out of band, via the outbox publisher, once this
	// transaction commits. That split needs no compensating credit for the
	// publish step: either the whole transaction commits, or the debit
	// never happened.
	Send(ctx context.Context, tenantID uuid.UUID, phoneNumber, text string, kind msgDomain.Kind) (*msgDomain.Message, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*msgDomain.Message, error)
	List(ctx context.Context, tenantID uuid.UUID, filter msgDomain.ListFilter) ([]*msgDomain.Message, int64, error)

	// OwnerOf looks up which tenant owns a message id with no tenant
	// scoping, so the handler can tell a cross-tenant lookup (403) apart
	// from a message that truly does not exist (404).
	OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type smsService struct {
	db       db.DB
	messages msgDomain.Repository
}

// NewSMSService constructs the admission service. db is the raw adapter
// (not just the message repository) because Send must group a tenant
// debit, a message insert and an outbox insert into one transaction,
// crossing three aggregates that each own a separate repository.
func NewSMSService(d db.DB, messages msgDomain.Repository) SMSService {
	return &smsService{db: d, messages: messages}
}

func (s *smsService) Send(ctx context.Context, tenantID uuid.UUID, phoneNumber, text string, kind msgDomain.Kind) (*msgDomain.Message, error) {
	msg, err := msgDomain.NewMessage(tenantID, phoneNumber, text, kind)
	if err != nil {
		return nil, err
	}

	env := broker.Envelope{
		MessageID:   msg.ID.String(),
		TenantID:    tenantID.String(),
		PhoneNumber: phoneNumber,
		Text:        text,
		SMSType:     int(kind),
		EnqueuedAt:  msg.CreatedAt,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	rec := &outbox.Record{
		ID:        uuid.New(),
		MessageID: msg.ID,
		Queue:     kind.QueueName(),
		Payload:   payload,
		CreatedAt: msg.CreatedAt,
	}

	err = txrunner.Run(ctx, s.db, func(tx *gorm.DB) error {
		ok, err := tenantgorm.DebitTx(tx, tenantID, sendCost)
		if err != nil {
			return fmt.Errorf("debit tenant: %w", err)
		}
		if !ok {
			return ErrInsufficientBalance
		}

		if err := messagegorm.InsertTx(tx, msg); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		if err := outboxgorm.InsertTx(tx, rec); err != nil {
			return fmt.Errorf("insert outbox row: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return msg, nil
}

func (s *smsService) Get(ctx context.Context, tenantID, id uuid.UUID) (*msgDomain.Message, error) {
	return s.messages.Get(ctx, tenantID, id)
}

func (s *smsService) List(ctx context.Context, tenantID uuid.UUID, filter msgDomain.ListFilter) ([]*msgDomain.Message, int64, error) {
	return s.messages.ListByTenant(ctx, tenantID, filter)
}

func (s *smsService) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	m, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	return m.TenantID, nil
}
