package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
)

// Operation is one tracked betting/trading entry on the finance dashboard.
// Odds are stored as a decimal string to avoid float drift.
type Operation struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Title       string                `gorm:"column:title;not null"`
	Market      *string               `gorm:"column:market"`
	StakeCents  int                   `gorm:"column:stake_cents;not null"`
	Odds        string                `gorm:"column:odds;type:text;not null"`
	Result      enums.OperationResult `gorm:"column:result;type:text;not null;default:'pending'"`
	ProfitCents int                   `gorm:"column:profit_cents;not null;default:0"`
	OccurredAt  time.Time             `gorm:"column:occurred_at;not null;index"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
