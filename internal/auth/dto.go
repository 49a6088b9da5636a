package auth

import (
	"time"

	"github.com/itsrogermachado/novaeramtds-sub001/internal/users"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResult struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        users.UserView `json:"user"`
}
