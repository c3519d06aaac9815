package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/imagegenhub/server/internal/domain"
	"github.com/imagegenhub/server/internal/logger"
	"github.com/imagegenhub/server/internal/repository"
	"gorm.io/gorm"
)

// CommentService handles comment creation, listing, and author-only
// deletion.
type CommentService struct {
	comments *repository.CommentRepository
	memes    *repository.MemeRepository
	users    *repository.UserRepository
	logger   *logger.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(
	comments *repository.CommentRepository,
	memes *repository.MemeRepository,
	users *repository.UserRepository,
	log *logger.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		memes:    memes,
		users:    users,
		logger:   log,
	}
}

// Add attaches a comment to a meme. Bodies are capped at 140 characters;
// exactly 140 is accepted.
func (s *CommentService) Add(ctx context.Context, userID, memeID, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyComment
	}
	if utf8.RuneCountInString(content) > domain.MaxCommentLength {
		return nil, ErrCommentTooLong
	}

	if _, err := s.memes.GetByID(ctx, memeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up meme: %w", err)
	}

	comment := &domain.Comment{
		UserID:  userID,
		MemeID:  memeID,
		Content: content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	// Attach the author for the response, as readers expect it populated.
	if user, err := s.users.GetByID(ctx, userID); err == nil {
		comment.User = user
	}

	s.log(ctx).Debugf("Comment added: meme=%s, comment=%s", memeID, comment.ID)
	return comment, nil
}

// log returns a logger from context if available, otherwise the injected one.
func (s *CommentService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// ListForMeme returns a meme's comments, newest first.
func (s *CommentService) ListForMeme(ctx context.Context, memeID string) ([]domain.Comment, error) {
	comments, err := s.comments.ListForMeme(ctx, memeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Delete removes a comment the caller authored.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up comment: %w", err)
	}
	if comment.UserID != userID {
		return ErrForbidden
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
