package backup

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
)

type stubBackupRepo struct {
	snapshot *Snapshot
	err      error
}

func (s *stubBackupRepo) Snapshot(context.Context) (*Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func TestExportStripsPasswordHashes(t *testing.T) {
	repo := &stubBackupRepo{snapshot: &Snapshot{
		Users: []models.User{{
			ID:           uuid.New(),
			Email:        "admin@example.com",
			PasswordHash: "$argon2id$super-secret",
			DisplayName:  "Admin",
			Role:         enums.UserRoleAdmin,
			IsActive:     true,
		}},
		Products: []models.Product{{ID: uuid.New(), Slug: "starter-pack", Name: "Starter Pack"}},
	}}

	svc, err := NewService(repo, "novaera-api", logger.New(logger.Options{ServiceName: "backup-test"}))
	require.NoError(t, err)

	export, err := svc.Export(context.Background())
	require.NoError(t, err)

	raw, err := json.Marshal(export)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret")
	assert.Contains(t, string(raw), "admin@example.com")
}

func TestExportMetaCountsRows(t *testing.T) {
	repo := &stubBackupRepo{snapshot: &Snapshot{
		Users:    []models.User{{ID: uuid.New()}, {ID: uuid.New()}},
		Orders:   []models.Order{{ID: uuid.New()}},
		Expenses: []models.Expense{{ID: uuid.New()}},
	}}

	svc, err := NewService(repo, "novaera-api", logger.New(logger.Options{ServiceName: "backup-test"}))
	require.NoError(t, err)

	before := time.Now().UTC()
	export, err := svc.Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, export.Meta.RowCounts["users"])
	assert.Equal(t, 1, export.Meta.RowCounts["orders"])
	assert.Equal(t, 1, export.Meta.RowCounts["expenses"])
	assert.Equal(t, 0, export.Meta.RowCounts["coupons"])
	assert.Equal(t, "novaera-api", export.Meta.Service)
	assert.False(t, export.Meta.GeneratedAt.Before(before))
}
