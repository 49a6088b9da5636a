package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
)

// UserView is the transport shape; it never carries credentials.
type UserView struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type CreateOperatorInput struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,max=120"`
}

// CreatedOperator carries the one-time temporary password back to the admin.
type CreatedOperator struct {
	User         UserView `json:"user"`
	TempPassword string   `json:"temp_password"`
}

// ToView maps a persisted user to its transport shape.
func ToView(u models.User) UserView {
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
