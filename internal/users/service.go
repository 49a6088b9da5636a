package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/config"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/security"
)

const tempPasswordLength = 16

// Service covers account lookup and the admin team surface.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*UserView, error)
	ListTeam(ctx context.Context) ([]UserView, error)
	CreateOperator(ctx context.Context, input CreateOperatorInput) (*CreatedOperator, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo        Repository
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

func NewService(repo Repository, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserView, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := ToView(*user)
	return &view, nil
}

func (s *service) ListTeam(ctx context.Context) ([]UserView, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]UserView, 0, len(list))
	for _, u := range list {
		views = append(views, ToView(u))
	}
	return views, nil
}

// CreateOperator provisions an operator account with a generated temporary
// password. The plaintext is returned exactly once, in this response.
func (s *service) CreateOperator(ctx context.Context, input CreateOperatorInput) (*CreatedOperator, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating temporary password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing temporary password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Role:         enums.UserRoleOperator,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "operator_id", created.ID.String()), "team operator created")
	return &CreatedOperator{
		User:         ToView(*created),
		TempPassword: tempPassword,
	}, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot be deactivated")
	}
	return s.repo.SetActive(ctx, id, false)
}
