package message

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		phone   string
		text    string
		kind    Kind
		wantErr error
	}{
		{"valid plain digits", "15551234567", "hi", KindRegular, nil},
		{"valid formatted", "+1 555-123-4567", "hi", KindExpress, nil},
		{"empty phone", "", "hi", KindRegular, ErrEmptyPhone},
		{"phone too short", "+1 555", "hi", KindRegular, ErrPhoneLength},
		{"phone too long", strings.Repeat("5", 21), "hi", KindRegular, ErrPhoneLength},
		{"phone with letters", "+1555ABC4567x", "hi", KindRegular, ErrPhoneCharset},
		{"empty text", "15551234567", "", KindRegular, ErrEmptyText},
		{"text at limit", "15551234567", strings.Repeat("a", MaxTextLength), KindRegular, nil},
		{"text over limit", "15551234567", strings.Repeat("a", MaxTextLength+1), KindRegular, ErrTextTooLong},
		{"unknown kind", "15551234567", "hi", Kind(9), ErrInvalidKind},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.phone, tc.text, tc.kind)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate(%q, %q, %d) = %v, want %v", tc.phone, tc.text, tc.kind, err, tc.wantErr)
			}
		})
	}
}

func TestNewMessage_StartsPending(t *testing.T) {
	m, err := NewMessage(uuid.New(), "15551234567", "hi", KindExpress)
	if err != nil {
		t.Fatalf("NewMessage returned error: %v", err)
	}
	if m.Status != StatusPending {
		t.Fatalf("new message status = %d, want PENDING", m.Status)
	}
	if m.SentAt != nil {
		t.Fatalf("new message has sent_at set")
	}
}

func TestStatusTransitionsAreMonotonic(t *testing.T) {
	m, err := NewMessage(uuid.New(), "15551234567", "hi", KindRegular)
	if err != nil {
		t.Fatalf("NewMessage returned error: %v", err)
	}

	now := time.Now()
	if err := m.MarkSent(now); err != nil {
		t.Fatalf("MarkSent on PENDING returned error: %v", err)
	}
	if m.SentAt == nil || !m.SentAt.Equal(now) {
		t.Fatalf("sent_at = %v, want %v", m.SentAt, now)
	}

	if err := m.MarkFailed(); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("MarkFailed on SENT = %v, want ErrAlreadyTerminal", err)
	}
	if err := m.MarkSent(now); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("second MarkSent = %v, want ErrAlreadyTerminal", err)
	}
}

func TestKindQueueName(t *testing.T) {
	if got := KindExpress.QueueName(); got != "express" {
		t.Fatalf("express queue = %q", got)
	}
	if got := KindRegular.QueueName(); got != "regular" {
		t.Fatalf("regular queue = %q", got)
	}
}
