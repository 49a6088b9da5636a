package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/itsrogermachado/novaeramtds-sub001/pkg/db"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
)

// Service validates coupons against a cart and manages the admin catalog of
// codes. Redemption is repository-level so checkout can run it in its own
// transaction.
type Service interface {
	Validate(ctx context.Context, input ValidateInput) (*ValidateResult, error)
	List(ctx context.Context) ([]CouponView, error)
	Create(ctx context.Context, input CreateCouponInput) (*CouponView, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the coupon service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Validate(ctx context.Context, input ValidateInput) (*ValidateResult, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if !coupon.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}

	if coupon.MaxUses > 0 && coupon.UsedCount >= coupon.MaxUses {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon exhausted")
	}

	now := s.now().UTC()
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon not yet active")
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon expired")
	}

	if input.OrderCents < coupon.MinOrderCents {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order below coupon minimum")
	}
	if coupon.MaxOrderCents > 0 && input.OrderCents > coupon.MaxOrderCents {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order above coupon maximum")
	}

	eligible := eligibleCents(*coupon, input)
	if coupon.IsRestricted() && eligible == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon not applicable to these items")
	}

	discount := discountCents(*coupon, eligible)
	return &ValidateResult{
		Coupon:        *coupon,
		Code:          coupon.Code,
		DiscountCents: discount,
		EligibleCents: eligible,
	}, nil
}

func (s *service) List(ctx context.Context) ([]CouponView, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	views := make([]CouponView, 0, len(list))
	for _, coupon := range list {
		views = append(views, toCouponView(coupon))
	}
	return views, nil
}

func (s *service) Create(ctx context.Context, input CreateCouponInput) (*CouponView, error) {
	discountType, err := enums.ParseDiscountType(input.DiscountType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if discountType == enums.DiscountTypePercentage && input.DiscountValue > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_until precedes valid_from")
	}

	coupon := &models.Coupon{
		Code:             strings.ToUpper(strings.TrimSpace(input.Code)),
		DiscountType:     discountType,
		DiscountValue:    input.DiscountValue,
		MaxUses:          input.MaxUses,
		MinOrderCents:    input.MinOrderCents,
		MaxOrderCents:    input.MaxOrderCents,
		MaxDiscountCents: input.MaxDiscountCents,
		IsActive:         true,
		ValidFrom:        input.ValidFrom,
		ValidUntil:       input.ValidUntil,
		ProductIDs:       input.ProductIDs,
		CategoryIDs:      input.CategoryIDs,
	}

	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}

	view := toCouponView(*created)
	return &view, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	if err := s.repo.Update(ctx, id, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate coupon")
	}
	return nil
}

// eligibleCents sums the line totals the coupon may discount. An unrestricted
// coupon covers the whole order value.
func eligibleCents(coupon models.Coupon, input ValidateInput) int {
	if !coupon.IsRestricted() {
		return input.OrderCents
	}

	total := 0
	for _, item := range input.Items {
		if coupon.ProductIDs.Contains(item.ProductID.String()) ||
			coupon.CategoryIDs.Contains(item.Category) {
			total += item.UnitPriceCents * item.Qty
		}
	}
	return total
}

// discountCents applies the coupon value to the eligible amount, flooring
// percentage results to whole cents and clamping to the configured cap and to
// the eligible value itself.
func discountCents(coupon models.Coupon, eligible int) int {
	if eligible <= 0 {
		return 0
	}

	var discount int
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount = int(decimal.NewFromInt(int64(eligible)).
			Mul(decimal.NewFromInt(int64(coupon.DiscountValue))).
			Div(decimal.NewFromInt(100)).
			Floor().IntPart())
	case enums.DiscountTypeFixed:
		discount = coupon.DiscountValue
	}

	if coupon.MaxDiscountCents > 0 && discount > coupon.MaxDiscountCents {
		discount = coupon.MaxDiscountCents
	}
	if discount > eligible {
		discount = eligible
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
