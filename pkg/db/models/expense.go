package models

import (
	"time"

	"github.com/google/uuid"
)

// Expense is a dashboard spending entry.
type Expense struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Description string    `gorm:"column:description;not null"`
	Category    string    `gorm:"column:category;not null"`
	AmountCents int       `gorm:"column:amount_cents;not null"`
	SpentAt     time.Time `gorm:"column:spent_at;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
