package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
)

// Goal is a savings/profit target tracked on the dashboard.
type Goal struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Title        string           `gorm:"column:title;not null"`
	TargetCents  int              `gorm:"column:target_cents;not null"`
	CurrentCents int              `gorm:"column:current_cents;not null;default:0"`
	Deadline     *time.Time       `gorm:"column:deadline"`
	Status       enums.GoalStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
