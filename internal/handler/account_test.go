package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/oggyb/sms-gateway/internal/domain/tenant"
	"github.com/oggyb/sms-gateway/internal/middleware"
	"github.com/oggyb/sms-gateway/internal/response"
)

// fakeAccountService is a minimal stand-in for service.AccountService.
type fakeAccountService struct {
	createFn  func(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	balanceFn func(ctx context.Context, id uuid.UUID) (int64, error)
	chargeFn  func(ctx context.Context, id uuid.UUID, amount int64) (*tenant.Tenant, error)
}

func (f *fakeAccountService) Create(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return f.createFn(ctx, id)
}
func (f *fakeAccountService) GetBalance(ctx context.Context, id uuid.UUID) (int64, error) {
	return f.balanceFn(ctx, id)
}
func (f *fakeAccountService) Charge(ctx context.Context, id uuid.UUID, amount int64) (*tenant.Tenant, error) {
	return f.chargeFn(ctx, id, amount)
}

func TestAccountHandler_Create_Success(t *testing.T) {
	id := uuid.New()
	svc := &fakeAccountService{
		createFn: func(ctx context.Context, gotID uuid.UUID) (*tenant.Tenant, error) {
			return tenant.NewTenant(gotID, "key-abc"), nil
		},
	}
	h := NewAccountHandler(svc)

	body, _ := json.Marshal(map[string]string{"account_id": id.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func TestAccountHandler_Create_AlreadyExists(t *testing.T) {
	svc := &fakeAccountService{
		createFn: func(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
			return nil, tenant.ErrAlreadyExists
		},
	}
	h := NewAccountHandler(svc)

	body, _ := json.Marshal(map[string]string{"account_id": uuid.New().String()})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestAccountHandler_Create_InvalidBody(t *testing.T) {
	h := NewAccountHandler(&fakeAccountService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestAccountHandler_Balance_MissingTenantContext(t *testing.T) {
	h := NewAccountHandler(&fakeAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/balance", nil)
	rec := httptest.NewRecorder()

	h.Balance(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAccountHandler_Balance_Success(t *testing.T) {
	id := uuid.New()
	svc := &fakeAccountService{
		balanceFn: func(ctx context.Context, gotID uuid.UUID) (int64, error) {
			if gotID != id {
				t.Fatalf("balance requested for %s, want %s", gotID, id)
			}
			return 42, nil
		},
	}
	h := NewAccountHandler(svc)

	req := withTenant(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/balance", nil), id)
	rec := httptest.NewRecorder()

	h.Balance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var envelope response.JSONResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data := envelope.Data.(map[string]interface{})
	if data["balance"].(float64) != 42 {
		t.Fatalf("balance = %v, want 42", data["balance"])
	}
}

// withTenant attaches a tenant id to the request context the same way
// middleware.Auth would, for handler tests that bypass the real middleware.
func withTenant(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(middleware.ContextWithTenantID(r.Context(), id))
}
