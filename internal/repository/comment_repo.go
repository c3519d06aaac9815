package repository

import (
	"context"

	"github.com/imagegenhub/server/internal/domain"
	"gorm.io/gorm"
)

// CommentRepository handles comment persistence.
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository bound to db.
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a new comment record.
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetByID retrieves a comment by its ID.
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListForMeme retrieves a meme's comments newest first, with authors attached.
func (r *CommentRepository) ListForMeme(ctx context.Context, memeID string) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("meme_id = ?", memeID).
		Order("created_at DESC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// CountsForMemes counts comments per meme with a single grouped query.
// Memes without comments are absent from the map.
func (r *CommentRepository) CountsForMemes(ctx context.Context, memeIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(memeIDs))
	if len(memeIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		MemeID string
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Select("meme_id, COUNT(*) AS total").
		Where("meme_id IN ?", memeIDs).
		Group("meme_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.MemeID] = row.Total
	}
	return counts, nil
}

// Delete removes a comment by ID.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Comment{}, "id = ?", id).Error
}
