package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string { return "ne:session:access:" + accessID }

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	mgr := &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}

	accessID := NewAccessID()
	userID := uuid.New()

	if err := mgr.Create(ctx, accessID, userID); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if store.ttls["ne:session:access:"+accessID] != time.Hour {
		t.Fatalf("expected ttl to be applied")
	}

	ok, err := mgr.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !ok {
		t.Fatalf("expected active session")
	}

	if err := mgr.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	ok, err = mgr.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session after revoke: %v", err)
	}
	if ok {
		t.Fatalf("expected session gone after revoke")
	}
}

func TestSessionRequiresAccessID(t *testing.T) {
	ctx := context.Background()
	mgr := &Manager{store: newFakeStore(), keyer: fakeKeyer{}, ttl: time.Hour}

	if err := mgr.Create(ctx, "  ", uuid.New()); err == nil {
		t.Fatalf("expected error for blank access id")
	}
	if _, err := mgr.HasSession(ctx, ""); err == nil {
		t.Fatalf("expected error for blank access id")
	}
	if err := mgr.Revoke(ctx, ""); err == nil {
		t.Fatalf("expected error for blank access id")
	}
}
