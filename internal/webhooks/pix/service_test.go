package pix

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/config"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
)

type stubWebhookTransitioner struct {
	applied []enums.PaymentStatus
	err     error
}

func (s *stubWebhookTransitioner) ApplyPaymentStatus(ctx context.Context, providerTxnID string, status enums.PaymentStatus) error {
	if s.err != nil {
		return s.err
	}
	s.applied = append(s.applied, status)
	return nil
}

type stubGuard struct {
	seen    map[string]bool
	deleted []string
	err     error
}

func newStubGuard() *stubGuard {
	return &stubGuard{seen: map[string]bool{}}
}

func (s *stubGuard) CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *stubGuard) Delete(ctx context.Context, consumer, eventID string) error {
	s.deleted = append(s.deleted, eventID)
	delete(s.seen, eventID)
	return nil
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookService(t *testing.T, transitioner *stubWebhookTransitioner, guard *stubGuard) *Service {
	t.Helper()
	svc, err := NewService(config.PixConfig{WebhookSecret: "whsec_test"}, transitioner, guard, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestVerifySignature(t *testing.T) {
	svc := newWebhookService(t, &stubWebhookTransitioner{}, newStubGuard())
	body := []byte(`{"id_evento":"evt_1"}`)

	if !svc.VerifySignature(body, signBody("whsec_test", body)) {
		t.Fatal("expected valid signature to pass")
	}
	if svc.VerifySignature(body, signBody("wrong_secret", body)) {
		t.Fatal("expected signature from wrong secret to fail")
	}
	if svc.VerifySignature(body, "") {
		t.Fatal("expected empty signature to fail")
	}
}

func TestProcessAppliesTransition(t *testing.T) {
	transitioner := &stubWebhookTransitioner{}
	svc := newWebhookService(t, transitioner, newStubGuard())

	body := []byte(`{"id_evento":"evt_1","id_transacao":"pix_1","status":"COMPLETO"}`)
	if err := svc.Process(context.Background(), body); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(transitioner.applied) != 1 || transitioner.applied[0] != enums.PaymentStatusCompleto {
		t.Fatalf("expected COMPLETO transition, got %v", transitioner.applied)
	}
}

func TestProcessDuplicateEventSkipped(t *testing.T) {
	transitioner := &stubWebhookTransitioner{}
	svc := newWebhookService(t, transitioner, newStubGuard())

	body := []byte(`{"id_evento":"evt_dup","id_transacao":"pix_1","status":"COMPLETO"}`)
	if err := svc.Process(context.Background(), body); err != nil {
		t.Fatalf("first process: %v", err)
	}
	if err := svc.Process(context.Background(), body); err != nil {
		t.Fatalf("duplicate process: %v", err)
	}
	if len(transitioner.applied) != 1 {
		t.Fatalf("duplicate must not reapply, got %d transitions", len(transitioner.applied))
	}
}

func TestProcessFailureReleasesGuard(t *testing.T) {
	transitioner := &stubWebhookTransitioner{err: errors.New("db down")}
	guard := newStubGuard()
	svc := newWebhookService(t, transitioner, guard)

	body := []byte(`{"id_evento":"evt_fail","id_transacao":"pix_1","status":"COMPLETO"}`)
	if err := svc.Process(context.Background(), body); err == nil {
		t.Fatal("expected handling error")
	}
	if len(guard.deleted) != 1 || guard.deleted[0] != "evt_fail" {
		t.Fatalf("expected guard release, got %v", guard.deleted)
	}

	// Retry after the failure must go through.
	transitioner.err = nil
	if err := svc.Process(context.Background(), body); err != nil {
		t.Fatalf("retry process: %v", err)
	}
	if len(transitioner.applied) != 1 {
		t.Fatalf("expected retry to apply transition")
	}
}

func TestProcessRejectsUnknownStatus(t *testing.T) {
	svc := newWebhookService(t, &stubWebhookTransitioner{}, newStubGuard())

	body := []byte(`{"id_evento":"evt_x","id_transacao":"pix_1","status":"ESTORNADO"}`)
	err := svc.Process(context.Background(), body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
