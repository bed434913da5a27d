// Package service implements the admission, settlement-adjacent and
// account application services that sit between the HTTP handlers and the
// domain repositories.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/domain/tenant"
)

// AccountService exposes the tenant lifecycle operations backing the
// /accounts endpoints. It is a thin pass-through to tenant.Repository: the
// repository itself is the sole authority on key generation retry and
// atomic balance mutation, so there is no business logic left for this
// layer beyond argument shaping.
type AccountService interface {
	Create(ctx context.Context, accountID uuid.UUID) (*tenant.Tenant, error)
	GetBalance(ctx context.Context, id uuid.UUID) (int64, error)
	Charge(ctx context.Context, id uuid.UUID, amount int64) (*tenant.Tenant, error)
}

type accountService struct {
	repo tenant.Repository
}

func NewAccountService(repo tenant.Repository) AccountService {
	return &accountService{repo: repo}
}

func (s *accountService) Create(ctx context.Context, accountID uuid.UUID) (*tenant.Tenant, error) {
	if _, err := s.repo.GetByID(ctx, accountID); err == nil {
		return nil, tenant.ErrAlreadyExists
	}
	return s.repo.Create(ctx, accountID)
}

func (s *accountService) GetBalance(ctx context.Context, id uuid.UUID) (int64, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return t.Balance, nil
}

func (s *accountService) Charge(ctx context.Context, id uuid.UUID, amount int64) (*tenant.Tenant, error) {
	if amount <= 0 {
		return nil, tenant.ErrInvalidAmount
	}
	return s.repo.Charge(ctx, id, amount)
}
