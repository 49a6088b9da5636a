package pix

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/config"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
)

// consumerName keys the idempotency guard for gateway notifications.
const consumerName = "pix-webhook"

// Event is the gateway notification body.
type Event struct {
	EventID       string     `json:"id_evento"`
	TransactionID string     `json:"id_transacao"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"pago_em,omitempty"`
}

type orderTransitioner interface {
	ApplyPaymentStatus(ctx context.Context, providerTxnID string, status enums.PaymentStatus) error
}

type processedGuard interface {
	CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error)
	Delete(ctx context.Context, consumer, eventID string) error
}

// Service authenticates and applies PIX gateway notifications.
type Service struct {
	secret []byte
	orders orderTransitioner
	guard  processedGuard
	logg   *logger.Logger
}

// NewService builds the webhook service.
func NewService(cfg config.PixConfig, orders orderTransitioner, guard processedGuard, logg *logger.Logger) (*Service, error) {
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("pix webhook secret required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order transitioner required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	return &Service{
		secret: []byte(cfg.WebhookSecret),
		orders: orders,
		guard:  guard,
		logg:   logg,
	}, nil
}

// VerifySignature checks the X-Signature header: lowercase hex HMAC-SHA256 of
// the raw request body.
func (s *Service) VerifySignature(body []byte, signature string) bool {
	signature = strings.TrimSpace(strings.ToLower(signature))
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Process parses an authenticated notification and drives the order
// transition. Duplicate deliveries are absorbed by the idempotency guard; on
// a handling failure the guard key is released so the provider's retry can
// land.
func (s *Service) Process(ctx context.Context, body []byte) error {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook body")
	}
	if event.EventID == "" || event.TransactionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook event missing identifiers")
	}

	status, err := enums.ParsePaymentStatus(event.Status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown webhook status")
	}

	firstTime, err := s.guard.CheckAndMarkProcessed(ctx, consumerName, event.EventID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency check")
	}
	if !firstTime {
		if s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "event_id", event.EventID), "duplicate webhook event skipped")
		}
		return nil
	}

	if err := s.orders.ApplyPaymentStatus(ctx, event.TransactionID, status); err != nil {
		if delErr := s.guard.Delete(ctx, consumerName, event.EventID); delErr != nil && s.logg != nil {
			s.logg.Error(ctx, "failed to release webhook idempotency key", delErr)
		}
		return err
	}
	return nil
}
