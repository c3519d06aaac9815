package service

import (
	"context"
	"testing"
	"time"

	"github.com/imagegenhub/server/internal/domain"
	"github.com/imagegenhub/server/internal/logger"
	"github.com/imagegenhub/server/internal/repository"
	"gorm.io/gorm"
)

func newViewService(t *testing.T) (*ViewService, *gorm.DB, *domain.User, *domain.Meme) {
	t.Helper()

	db := newTestDB(t)
	user := createTestUser(t, db, "viewer")
	meme := createTestMeme(t, db, user.ID)
	svc := NewViewService(repository.NewViewRepository(db), repository.NewMemeRepository(db), logger.Default())
	return svc, db, user, meme
}

func memeViews(t *testing.T, db *gorm.DB, memeID string) int64 {
	t.Helper()

	var meme domain.Meme
	if err := db.First(&meme, "id = ?", memeID).Error; err != nil {
		t.Fatalf("failed to reload meme: %v", err)
	}
	return meme.Views
}

func TestRecordAuthenticatedViewCountsOnce(t *testing.T) {
	svc, db, user, meme := newViewService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		counted, err := svc.Record(ctx, meme.ID, &user.ID, "10.0.0.1")
		if err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
		if want := i == 0; counted != want {
			t.Errorf("Record %d counted = %v, want %v", i, counted, want)
		}
	}

	if got := memeViews(t, db, meme.ID); got != 1 {
		t.Errorf("views = %d, want 1 after repeated authenticated views", got)
	}

	var rows int64
	if err := db.Model(&domain.View{}).Where("meme_id = ?", meme.ID).Count(&rows).Error; err != nil {
		t.Fatalf("failed to count view rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("view rows = %d, want 1", rows)
	}
}

func TestRecordDistinctUsersCountSeparately(t *testing.T) {
	svc, db, user, meme := newViewService(t)
	other := createTestUser(t, db, "other")
	ctx := context.Background()

	if _, err := svc.Record(ctx, meme.ID, &user.ID, "10.0.0.1"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	counted, err := svc.Record(ctx, meme.ID, &other.ID, "10.0.0.1")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !counted {
		t.Error("second user's view not counted")
	}
	if got := memeViews(t, db, meme.ID); got != 2 {
		t.Errorf("views = %d, want 2", got)
	}
}

func TestRecordAnonymousCooldown(t *testing.T) {
	svc, db, _, meme := newViewService(t)
	ctx := context.Background()

	counted, err := svc.Record(ctx, meme.ID, nil, "192.0.2.7")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !counted {
		t.Error("first anonymous view not counted")
	}

	counted, err = svc.Record(ctx, meme.ID, nil, "192.0.2.7")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if counted {
		t.Error("repeat anonymous view counted inside the cooldown window")
	}
	if got := memeViews(t, db, meme.ID); got != 1 {
		t.Errorf("views = %d, want 1 within cooldown", got)
	}

	// Age the recorded view past the window; the same address counts again.
	stale := time.Now().Add(-AnonymousViewCooldown - time.Minute)
	if err := db.Model(&domain.View{}).
		Where("meme_id = ? AND ip = ?", meme.ID, "192.0.2.7").
		Update("viewed_at", stale).Error; err != nil {
		t.Fatalf("failed to backdate view: %v", err)
	}

	counted, err = svc.Record(ctx, meme.ID, nil, "192.0.2.7")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !counted {
		t.Error("anonymous view not counted after the cooldown expired")
	}
	if got := memeViews(t, db, meme.ID); got != 2 {
		t.Errorf("views = %d, want 2 after cooldown expiry", got)
	}
}

func TestRecordAnonymousDistinctAddresses(t *testing.T) {
	svc, db, _, meme := newViewService(t)
	ctx := context.Background()

	for _, ip := range []string{"192.0.2.1", "192.0.2.2", ""} {
		counted, err := svc.Record(ctx, meme.ID, nil, ip)
		if err != nil {
			t.Fatalf("Record(%q) failed: %v", ip, err)
		}
		if !counted {
			t.Errorf("Record(%q) not counted", ip)
		}
	}
	if got := memeViews(t, db, meme.ID); got != 3 {
		t.Errorf("views = %d, want 3 for distinct addresses", got)
	}
}
