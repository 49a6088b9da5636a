package coupons

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
)

func setupCouponsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS coupons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  discount_type TEXT NOT NULL,
  discount_value INTEGER NOT NULL,
  max_uses INTEGER NOT NULL DEFAULT 0,
  used_count INTEGER NOT NULL DEFAULT 0,
  min_order_cents INTEGER NOT NULL DEFAULT 0,
  max_order_cents INTEGER NOT NULL DEFAULT 0,
  max_discount_cents INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  valid_from DATETIME,
  valid_until DATETIME,
  product_ids TEXT,
  category_ids TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedCoupon(t *testing.T, db *gorm.DB, code string, maxUses, usedCount int) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          code,
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: 500,
		MaxUses:       maxUses,
		UsedCount:     usedCount,
		IsActive:      true,
	}
	require.NoError(t, db.Create(coupon).Error)
	return coupon
}

func TestRedeemIncrementsUsedCount(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	coupon := seedCoupon(t, db, "WELCOME10", 3, 0)

	require.NoError(t, repo.Redeem(ctx, coupon.ID))
	require.NoError(t, repo.Redeem(ctx, coupon.ID))

	reloaded, err := repo.FindByCode(ctx, "WELCOME10")
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.UsedCount)
}

func TestRedeemStopsAtMaxUses(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	coupon := seedCoupon(t, db, "LASTONE", 1, 0)

	require.NoError(t, repo.Redeem(ctx, coupon.ID))

	err := repo.Redeem(ctx, coupon.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	reloaded, err := repo.FindByCode(ctx, "LASTONE")
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.UsedCount)
}

func TestRedeemUnlimitedCoupon(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	coupon := seedCoupon(t, db, "FOREVER", 0, 41)

	require.NoError(t, repo.Redeem(ctx, coupon.ID))

	reloaded, err := repo.FindByCode(ctx, "FOREVER")
	require.NoError(t, err)
	assert.Equal(t, 42, reloaded.UsedCount)
}

func TestRedeemInactiveCoupon(t *testing.T) {
	db := setupCouponsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	coupon := seedCoupon(t, db, "DISABLED", 0, 0)
	require.NoError(t, repo.Update(ctx, coupon.ID, map[string]any{"is_active": false}))

	err := repo.Redeem(ctx, coupon.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}
