package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
)

// PaymentTransaction links an order to a PIX charge at the gateway.
// Status mirrors the provider state verbatim.
type PaymentTransaction struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	ProviderTxnID string              `gorm:"column:provider_txn_id;type:text;not null;uniqueIndex"`
	Status        enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'PENDENTE';index"`
	AmountCents   int                 `gorm:"column:amount_cents;not null"`
	QRCodeBase64  string              `gorm:"column:qr_code_base64;not null"`
	CopyPasteCode string              `gorm:"column:copy_paste_code;not null"`
	PayerName     string              `gorm:"column:payer_name;not null"`
	PayerDocument *string             `gorm:"column:payer_document"`
	LastCheckedAt *time.Time          `gorm:"column:last_checked_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
