package repository

import (
	"context"
	"time"

	"github.com/imagegenhub/server/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ViewRepository handles view dedup records.
type ViewRepository struct {
	db *gorm.DB
}

// NewViewRepository creates a new ViewRepository bound to db.
func NewViewRepository(db *gorm.DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// CreateForUser inserts a view record for an authenticated viewer,
// ignoring the write when one already exists for the (meme, user) pair.
// The insert-or-ignore makes the lifetime dedup safe under concurrent
// first views, avoiding a separate existence check.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - memeID: viewed meme.
//   - userID: authenticated viewer.
//   - ip: originating address, recorded for completeness.
// Returns:
//   - bool: true when a new record was created.
//   - error: non-nil if the insert fails.
func (r *ViewRepository) CreateForUser(ctx context.Context, memeID, userID, ip string) (bool, error) {
	view := domain.View{
		MemeID: memeID,
		UserID: &userID,
		IP:     ip,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meme_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&view)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateAnonymous inserts a view record with no user reference.
func (r *ViewRepository) CreateAnonymous(ctx context.Context, memeID, ip string) error {
	view := domain.View{
		MemeID: memeID,
		IP:     ip,
	}
	return r.db.WithContext(ctx).Create(&view).Error
}

// ExistsAnonymousSince checks for an anonymous view of the meme from the
// given address at or after the cutoff time.
func (r *ViewRepository) ExistsAnonymousSince(ctx context.Context, memeID, ip string, cutoff time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.View{}).
		Where("meme_id = ? AND ip = ? AND user_id IS NULL AND viewed_at >= ?", memeID, ip, cutoff).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountForMeme counts view records for a meme.
func (r *ViewRepository) CountForMeme(ctx context.Context, memeID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.View{}).
		Where("meme_id = ?", memeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
