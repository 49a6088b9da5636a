package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
)

type stubCouponRepo struct {
	coupons map[string]*models.Coupon
}

func (s *stubCouponRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCouponRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if coupon, ok := s.coupons[code]; ok {
		return coupon, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCouponRepo) List(ctx context.Context) ([]models.Coupon, error) { return nil, nil }

func (s *stubCouponRepo) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	coupon.ID = uuid.New()
	return coupon, nil
}

func (s *stubCouponRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubCouponRepo) Redeem(ctx context.Context, id uuid.UUID) error { return nil }

func newValidatorService(t *testing.T, coupon *models.Coupon, at time.Time) Service {
	t.Helper()
	repo := &stubCouponRepo{coupons: map[string]*models.Coupon{}}
	if coupon != nil {
		repo.coupons[coupon.Code] = coupon
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.(*service).now = func() time.Time { return at }
	return svc
}

func timePtr(t time.Time) *time.Time { return &t }

func TestValidatePercentageDiscount(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          "SAVE15",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 15,
		IsActive:      true,
	}
	svc := newValidatorService(t, coupon, now)

	result, err := svc.Validate(context.Background(), ValidateInput{
		Code:       " save15 ",
		OrderCents: 9999,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	// 9999 * 15% = 1499.85, floored to 1499.
	if result.DiscountCents != 1499 {
		t.Fatalf("expected 1499, got %d", result.DiscountCents)
	}
	if result.EligibleCents != 9999 {
		t.Fatalf("expected eligible 9999, got %d", result.EligibleCents)
	}
}

func TestValidateFixedDiscountClampedToEligible(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          "FLAT50",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 5000,
		IsActive:      true,
	}
	svc := newValidatorService(t, coupon, now)

	result, err := svc.Validate(context.Background(), ValidateInput{
		Code:       "FLAT50",
		OrderCents: 3000,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.DiscountCents != 3000 {
		t.Fatalf("expected clamp to 3000, got %d", result.DiscountCents)
	}
}

func TestValidateMaxDiscountCap(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	coupon := &models.Coupon{
		ID:               uuid.New(),
		Code:             "BIG50",
		DiscountType:     enums.DiscountTypePercentage,
		DiscountValue:    50,
		MaxDiscountCents: 2000,
		IsActive:         true,
	}
	svc := newValidatorService(t, coupon, now)

	result, err := svc.Validate(context.Background(), ValidateInput{
		Code:       "BIG50",
		OrderCents: 10000,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.DiscountCents != 2000 {
		t.Fatalf("expected cap 2000, got %d", result.DiscountCents)
	}
}

func TestValidateRejectsExhausted(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          "GONE",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 500,
		MaxUses:       5,
		UsedCount:     5,
		IsActive:      true,
	}
	svc := newValidatorService(t, coupon, now)

	_, err := svc.Validate(context.Background(), ValidateInput{Code: "GONE", OrderCents: 1000})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestValidateWindow(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	notYet := &models.Coupon{
		ID:            uuid.New(),
		Code:          "SOON",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 500,
		IsActive:      true,
		ValidFrom:     timePtr(now.Add(time.Hour)),
	}
	svc := newValidatorService(t, notYet, now)
	_, err := svc.Validate(context.Background(), ValidateInput{Code: "SOON", OrderCents: 1000})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected not-yet-active conflict, got %v", err)
	}

	expired := &models.Coupon{
		ID:            uuid.New(),
		Code:          "LATE",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 500,
		IsActive:      true,
		ValidUntil:    timePtr(now.Add(-time.Hour)),
	}
	svc = newValidatorService(t, expired, now)
	_, err = svc.Validate(context.Background(), ValidateInput{Code: "LATE", OrderCents: 1000})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected expired conflict, got %v", err)
	}
}

func TestValidateOrderBounds(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          "MID",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 500,
		MinOrderCents: 2000,
		MaxOrderCents: 8000,
		IsActive:      true,
	}
	svc := newValidatorService(t, coupon, now)

	_, err := svc.Validate(context.Background(), ValidateInput{Code: "MID", OrderCents: 1500})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected below-minimum conflict, got %v", err)
	}

	_, err = svc.Validate(context.Background(), ValidateInput{Code: "MID", OrderCents: 9000})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected above-maximum conflict, got %v", err)
	}
}

func TestValidateRestrictedCoupon(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	targetProduct := uuid.New()
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          "STREAM20",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 20,
		IsActive:      true,
		ProductIDs:    []string{targetProduct.String()},
	}
	svc := newValidatorService(t, coupon, now)

	result, err := svc.Validate(context.Background(), ValidateInput{
		Code:       "STREAM20",
		OrderCents: 10000,
		Items: []ValidateItem{
			{ProductID: targetProduct, Category: "streaming", UnitPriceCents: 2500, Qty: 2},
			{ProductID: uuid.New(), Category: "vpn", UnitPriceCents: 5000, Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.EligibleCents != 5000 {
		t.Fatalf("expected eligible 5000, got %d", result.EligibleCents)
	}
	if result.DiscountCents != 1000 {
		t.Fatalf("expected discount 1000, got %d", result.DiscountCents)
	}
}

func TestValidateRestrictedCouponNoMatches(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          "GAMES10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 10,
		IsActive:      true,
		CategoryIDs:   []string{"games"},
	}
	svc := newValidatorService(t, coupon, now)

	_, err := svc.Validate(context.Background(), ValidateInput{
		Code:       "GAMES10",
		OrderCents: 5000,
		Items: []ValidateItem{
			{ProductID: uuid.New(), Category: "streaming", UnitPriceCents: 5000, Qty: 1},
		},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected not-applicable conflict, got %v", err)
	}
}

func TestValidateUnknownCode(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newValidatorService(t, nil, now)

	_, err := svc.Validate(context.Background(), ValidateInput{Code: "NOPE", OrderCents: 1000})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
