package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	msgDomain "github.com/oggyb/sms-gateway/internal/domain/message"
	"github.com/oggyb/sms-gateway/internal/service"
)

var errScopedMiss = errors.New("record not found")

// fakeSMSService is a minimal stand-in for service.SMSService.
type fakeSMSService struct {
	sendFn  func(ctx context.Context, tenantID uuid.UUID, phone, text string, kind msgDomain.Kind) (*msgDomain.Message, error)
	getFn   func(ctx context.Context, tenantID, id uuid.UUID) (*msgDomain.Message, error)
	ownerFn func(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

func (f *fakeSMSService) Send(ctx context.Context, tenantID uuid.UUID, phone, text string, kind msgDomain.Kind) (*msgDomain.Message, error) {
	return f.sendFn(ctx, tenantID, phone, text, kind)
}
func (f *fakeSMSService) Get(ctx context.Context, tenantID, id uuid.UUID) (*msgDomain.Message, error) {
	return f.getFn(ctx, tenantID, id)
}
func (f *fakeSMSService) List(ctx context.Context, tenantID uuid.UUID, filter msgDomain.ListFilter) ([]*msgDomain.Message, int64, error) {
	return nil, 0, nil
}
func (f *fakeSMSService) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	return f.ownerFn(ctx, id)
}

func sendRequestBody(t *testing.T, phone, text string, smsType int) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"phone_number": phone,
		"message":      text,
		"sms_type":     smsType,
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(body)
}

func TestSMSHandler_Send_Success(t *testing.T) {
	tenantID := uuid.New()
	var gotKind msgDomain.Kind
	svc := &fakeSMSService{
		sendFn: func(ctx context.Context, gotTenant uuid.UUID, phone, text string, kind msgDomain.Kind) (*msgDomain.Message, error) {
			if gotTenant != tenantID {
				t.Fatalf("send for tenant %s, want %s", gotTenant, tenantID)
			}
			gotKind = kind
			return msgDomain.NewMessage(gotTenant, phone, text, kind)
		},
	}
	h := NewSMSHandler(svc)

	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/v1/sms/send", sendRequestBody(t, "+15551234567", "hello", 2)), tenantID)
	rec := httptest.NewRecorder()

	h.Send(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if gotKind != msgDomain.KindExpress {
		t.Fatalf("kind = %d, want express", gotKind)
	}
}

func TestSMSHandler_Send_DefaultsToRegular(t *testing.T) {
	tenantID := uuid.New()
	var gotKind msgDomain.Kind
	svc := &fakeSMSService{
		sendFn: func(ctx context.Context, _ uuid.UUID, phone, text string, kind msgDomain.Kind) (*msgDomain.Message, error) {
			gotKind = kind
			return msgDomain.NewMessage(tenantID, phone, text, kind)
		},
	}
	h := NewSMSHandler(svc)

	body, _ := json.Marshal(map[string]string{"phone_number": "+15551234567", "message": "hello"})
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/v1/sms/send", bytes.NewReader(body)), tenantID)
	rec := httptest.NewRecorder()

	h.Send(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if gotKind != msgDomain.KindRegular {
		t.Fatalf("kind = %d, want regular default", gotKind)
	}
}

func TestSMSHandler_Send_InsufficientBalance(t *testing.T) {
	svc := &fakeSMSService{
		sendFn: func(ctx context.Context, _ uuid.UUID, _, _ string, _ msgDomain.Kind) (*msgDomain.Message, error) {
			return nil, service.ErrInsufficientBalance
		},
	}
	h := NewSMSHandler(svc)

	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/v1/sms/send", sendRequestBody(t, "+15551234567", "hello", 1)), uuid.New())
	rec := httptest.NewRecorder()

	h.Send(rec, req)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusPaymentRequired)
	}
}

func TestSMSHandler_Send_Validation(t *testing.T) {
	cases := []struct {
		name    string
		phone   string
		text    string
		smsType int
	}{
		{"short phone", "+1 555", "hello", 1},
		{"empty message", "+15551234567", "", 1},
		{"oversize message", "+15551234567", strings.Repeat("a", 71), 1},
		{"unknown sms_type", "+15551234567", "hello", 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewSMSHandler(&fakeSMSService{
				sendFn: func(ctx context.Context, _ uuid.UUID, _, _ string, _ msgDomain.Kind) (*msgDomain.Message, error) {
					t.Fatal("service reached despite invalid request")
					return nil, nil
				},
			})

			req := withTenant(httptest.NewRequest(http.MethodPost, "/api/v1/sms/send", sendRequestBody(t, tc.phone, tc.text, tc.smsType)), uuid.New())
			rec := httptest.NewRecorder()

			h.Send(rec, req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
			}
		})
	}
}

func TestSMSHandler_Get_CrossTenantIsForbidden(t *testing.T) {
	me, other := uuid.New(), uuid.New()
	id := uuid.New()
	svc := &fakeSMSService{
		getFn: func(ctx context.Context, tenantID, gotID uuid.UUID) (*msgDomain.Message, error) {
			return nil, errScopedMiss
		},
		ownerFn: func(ctx context.Context, gotID uuid.UUID) (uuid.UUID, error) {
			return other, nil
		},
	}
	h := NewSMSHandler(svc)

	req := withTenant(httptest.NewRequest(http.MethodGet, "/api/v1/sms/"+id.String(), nil), me)
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestSMSHandler_Get_NotFound(t *testing.T) {
	id := uuid.New()
	svc := &fakeSMSService{
		getFn: func(ctx context.Context, tenantID, gotID uuid.UUID) (*msgDomain.Message, error) {
			return nil, errScopedMiss
		},
		ownerFn: func(ctx context.Context, gotID uuid.UUID) (uuid.UUID, error) {
			return uuid.Nil, errScopedMiss
		},
	}
	h := NewSMSHandler(svc)

	req := withTenant(httptest.NewRequest(http.MethodGet, "/api/v1/sms/"+id.String(), nil), uuid.New())
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSMSHandler_Send_AcceptsSeparatorHeavyPhone(t *testing.T) {
	tenantID := uuid.New()
	svc := &fakeSMSService{
		sendFn: func(ctx context.Context, gotTenant uuid.UUID, phone, text string, kind msgDomain.Kind) (*msgDomain.Message, error) {
			return msgDomain.NewMessage(gotTenant, phone, text, kind)
		},
	}
	h := NewSMSHandler(svc)

	// 11 digits once the separators are stripped; 21 characters raw.
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/v1/sms/send", sendRequestBody(t, "1 2 3 4 5 6 7 8 9 0 1", "hello", 1)), tenantID)
	rec := httptest.NewRecorder()

	h.Send(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}
