package pix

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
)

func TestClientCreateCharge(t *testing.T) {
	const expectedURL = "http://pix.test/v1/cobrancas"
	respBody := `{"id":"txn_123","status":"PENDENTE","qr_code_base64":"aW1n","copia_e_cola":"00020126pixkey"}`

	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if payload["valor"] != "79.90" {
			t.Fatalf("unexpected valor %v", payload["valor"])
		}
		pagador, ok := payload["pagador"].(map[string]any)
		if !ok || pagador["nome"] != "Ana Souza" {
			t.Fatalf("unexpected pagador %v", payload["pagador"])
		}

		return &http.Response{
			StatusCode: http.StatusCreated,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", "sandbox", WithBaseURL("http://pix.test/v1"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	charge, err := client.CreateCharge(context.Background(), ChargeRequest{
		AmountCents: 7990,
		PayerName:   "Ana Souza",
		PayerEmail:  "ana@example.com",
	})
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if got := capturedHeaders.Get("Authorization"); got != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", got)
	}
	if charge.TransactionID != "txn_123" {
		t.Fatalf("unexpected transaction id %q", charge.TransactionID)
	}
	if charge.Status != enums.PaymentStatusPendente {
		t.Fatalf("unexpected status %s", charge.Status)
	}
	if charge.CopyPasteCode != "00020126pixkey" {
		t.Fatalf("copy paste code missing")
	}
}

func TestClientCreateChargeValidation(t *testing.T) {
	client, err := NewClient("test-key", "sandbox")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.CreateCharge(context.Background(), ChargeRequest{AmountCents: 0, PayerName: "Ana"})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = client.CreateCharge(context.Background(), ChargeRequest{AmountCents: 100, PayerName: "  "})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestClientGetCharge(t *testing.T) {
	respBody := `{"id":"txn_123","status":"COMPLETO","pago_em":"2026-07-01T12:30:00Z"}`

	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", "sandbox", WithBaseURL("http://pix.test/v1"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	charge, err := client.GetCharge(context.Background(), "txn_123")
	if err != nil {
		t.Fatalf("get charge: %v", err)
	}
	if capturedURL != "http://pix.test/v1/cobrancas/txn_123" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if charge.Status != enums.PaymentStatusCompleto {
		t.Fatalf("unexpected status %s", charge.Status)
	}
	if charge.PaidAt == nil {
		t.Fatalf("expected paid_at to be populated")
	}
}

func TestClientGetChargeNotFound(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`{"erro":"nao encontrado"}`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", "sandbox", WithBaseURL("http://pix.test/v1"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.GetCharge(context.Background(), "txn_missing")
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestClientGetChargeUnknownStatus(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"id":"txn_123","status":"ESTORNADO"}`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", "sandbox", WithBaseURL("http://pix.test/v1"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.GetCharge(context.Background(), "txn_123")
	assertCode(t, err, pkgerrors.CodeDependency)
}

func TestNewClientEnvironments(t *testing.T) {
	if _, err := NewClient("", "sandbox"); err == nil {
		t.Fatalf("expected error for blank api key")
	}

	prod, err := NewClient("key", "production")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if prod.baseURL != defaultProdBaseURL {
		t.Fatalf("expected production base url, got %q", prod.baseURL)
	}

	sandbox, err := NewClient("key", "anything-else")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if sandbox.baseURL != defaultSandboxBaseURL {
		t.Fatalf("expected sandbox base url, got %q", sandbox.baseURL)
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %T", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
