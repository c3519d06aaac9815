package service

import (
	"path/filepath"
	"testing"

	"github.com/imagegenhub/server/internal/domain"
	"github.com/imagegenhub/server/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestMeme(t *testing.T, db *gorm.DB, creatorID string) *domain.Meme {
	t.Helper()

	meme := &domain.Meme{
		CreatorID:    creatorID,
		ImageURL:     "http://localhost/uploads/memes/test.png",
		TextColor:    domain.DefaultTextColor,
		FontSize:     domain.DefaultFontSize,
		TextPosition: domain.DefaultTextPosition(),
	}
	if err := db.Create(meme).Error; err != nil {
		t.Fatalf("failed to create test meme: %v", err)
	}
	return meme
}

// castVote writes a vote directly, bypassing the toggle, for test setup.
func castVote(t *testing.T, db *gorm.DB, userID, memeID string, kind domain.VoteType) {
	t.Helper()

	vote := &domain.Vote{UserID: userID, MemeID: memeID, Type: kind}
	if err := db.Create(vote).Error; err != nil {
		t.Fatalf("failed to create test vote: %v", err)
	}
}
