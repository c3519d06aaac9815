package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/imagegenhub/server/internal/domain"
	"github.com/imagegenhub/server/internal/logger"
	"github.com/imagegenhub/server/internal/repository"
	"gorm.io/gorm"
)

// VoteOutcome reports what a toggle did to the ledger.
type VoteOutcome string

const (
	VoteRecorded VoteOutcome = "recorded"
	VoteUpdated  VoteOutcome = "updated"
	VoteRemoved  VoteOutcome = "removed"
)

// VoteService maintains the at-most-one-vote-per-user-per-meme rule and
// exposes the toggle operation. Vote tallies are never denormalized onto
// memes; readers recompute them from the ledger.
type VoteService struct {
	db     *gorm.DB
	memes  *repository.MemeRepository
	logger *logger.Logger
}

// NewVoteService creates a new vote service.
func NewVoteService(db *gorm.DB, memes *repository.MemeRepository, log *logger.Logger) *VoteService {
	return &VoteService{
		db:     db,
		memes:  memes,
		logger: log,
	}
}

// Toggle applies a vote of the given kind for (user, meme).
//
// With no existing vote it records one; with an existing vote of the same
// kind it removes it; with an existing vote of the other kind it flips it
// in place. The whole read-then-write runs inside a transaction, with the
// unique (user_id, meme_id) index as the storage-level backstop for the
// single-vote invariant.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - userID: voting user.
//   - memeID: target meme.
//   - kind: upvote or downvote; anything else is rejected before any write.
// Returns:
//   - VoteOutcome: recorded, updated, or removed.
//   - *domain.Vote: the resulting vote record; nil when removed.
//   - error: ErrInvalidVoteType, ErrNotFound, or a wrapped storage error.
func (s *VoteService) Toggle(ctx context.Context, userID, memeID string, kind domain.VoteType) (VoteOutcome, *domain.Vote, error) {
	if !kind.Valid() {
		return "", nil, ErrInvalidVoteType
	}

	if _, err := s.memes.GetByID(ctx, memeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("failed to look up meme: %w", err)
	}

	var outcome VoteOutcome
	var result *domain.Vote

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Vote
		err := tx.First(&existing, "user_id = ? AND meme_id = ?", userID, memeID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := domain.Vote{
				UserID: userID,
				MemeID: memeID,
				Type:   kind,
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			outcome = VoteRecorded
			result = &vote
			return nil

		case err != nil:
			return err

		case existing.Type == kind:
			if err := tx.Delete(&domain.Vote{}, "id = ?", existing.ID).Error; err != nil {
				return err
			}
			outcome = VoteRemoved
			result = nil
			return nil

		default:
			existing.Type = kind
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			outcome = VoteUpdated
			result = &existing
			return nil
		}
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to toggle vote: %w", err)
	}

	s.log(ctx).Debugf("Vote toggled: meme=%s, outcome=%s", memeID, outcome)
	return outcome, result, nil
}

// log returns a logger from context if available, otherwise the injected one.
func (s *VoteService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}
