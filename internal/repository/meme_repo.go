package repository

import (
	"context"
	"time"

	"github.com/imagegenhub/server/internal/domain"
	"gorm.io/gorm"
)

// MemeRepository handles meme persistence and ranked listing queries.
type MemeRepository struct {
	db *gorm.DB
}

// NewMemeRepository creates a new MemeRepository bound to db.
func NewMemeRepository(db *gorm.DB) *MemeRepository {
	return &MemeRepository{db: db}
}

// Create inserts a new meme record.
func (r *MemeRepository) Create(ctx context.Context, meme *domain.Meme) error {
	return r.db.WithContext(ctx).Create(meme).Error
}

// GetByID retrieves a meme by its ID with the creator attached.
func (r *MemeRepository) GetByID(ctx context.Context, id string) (*domain.Meme, error) {
	var meme domain.Meme
	if err := r.db.WithContext(ctx).Preload("Creator").First(&meme, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meme, nil
}

// Update persists changed fields of an existing meme.
func (r *MemeRepository) Update(ctx context.Context, meme *domain.Meme) error {
	return r.db.WithContext(ctx).Save(meme).Error
}

// ListNewest retrieves memes ordered by creation time, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
//   - templatesOnly: restrict to template memes.
// Returns:
//   - []domain.Meme: page of memes with creators attached.
//   - error: non-nil if the query fails.
func (r *MemeRepository) ListNewest(ctx context.Context, limit, offset int, templatesOnly bool) ([]domain.Meme, error) {
	query := r.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC, id ASC")
	if templatesOnly {
		query = query.Where("is_template = ?", true)
	}

	var memes []domain.Meme
	if err := query.
		Limit(limit).
		Offset(offset).
		Find(&memes).Error; err != nil {
		return nil, err
	}
	return memes, nil
}

// ListTopByScore retrieves memes ordered by net vote score (upvotes minus
// downvotes), computed by joining the votes collection. Ties break by
// newest creation time, then by ID, so the order is deterministic.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - since: only include memes created at or after this time; nil means all.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
//   - templatesOnly: restrict to template memes.
// Returns:
//   - []domain.Meme: page of memes with creators attached.
//   - error: non-nil if the query fails.
func (r *MemeRepository) ListTopByScore(ctx context.Context, since *time.Time, limit, offset int, templatesOnly bool) ([]domain.Meme, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Meme{}).
		Select("memes.*, COALESCE(SUM(CASE votes.vote_type WHEN 'upvote' THEN 1 WHEN 'downvote' THEN -1 ELSE 0 END), 0) AS net_score").
		Joins("LEFT JOIN votes ON votes.meme_id = memes.id").
		Group("memes.id").
		Order("net_score DESC, memes.created_at DESC, memes.id ASC")
	if since != nil {
		query = query.Where("memes.created_at >= ?", *since)
	}
	if templatesOnly {
		query = query.Where("memes.is_template = ?", true)
	}

	var memes []domain.Meme
	if err := query.
		Preload("Creator").
		Limit(limit).
		Offset(offset).
		Find(&memes).Error; err != nil {
		return nil, err
	}
	return memes, nil
}

// ListByCreator retrieves a user's memes, newest first.
func (r *MemeRepository) ListByCreator(ctx context.Context, creatorID string) ([]domain.Meme, error) {
	var memes []domain.Meme
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC, id ASC").
		Find(&memes).Error; err != nil {
		return nil, err
	}
	return memes, nil
}

// Count counts memes, optionally restricted to those created since a time
// and to templates.
func (r *MemeRepository) Count(ctx context.Context, since *time.Time, templatesOnly bool) (int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Meme{})
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	if templatesOnly {
		query = query.Where("is_template = ?", true)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementViews bumps the view counter by one at the database, so
// concurrent increments cannot lose updates. The counter never decreases.
func (r *MemeRepository) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Meme{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// IncrementFlags bumps the flag counter by one at the database.
func (r *MemeRepository) IncrementFlags(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Meme{}).
		Where("id = ?", id).
		UpdateColumn("flags", gorm.Expr("flags + 1")).Error
}

// DeleteCascade removes a meme together with its votes, comments, and view
// records in a single transaction.
func (r *MemeRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.Vote{}, "meme_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Comment{}, "meme_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.View{}, "meme_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Meme{}, "id = ?", id).Error
	})
}
