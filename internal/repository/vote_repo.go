package repository

import (
	"context"

	"github.com/imagegenhub/server/internal/domain"
	"gorm.io/gorm"
)

// VoteCounts holds per-meme vote tallies computed at read time.
type VoteCounts struct {
	Upvotes   int64
	Downvotes int64
}

// Net returns upvotes minus downvotes.
func (c VoteCounts) Net() int64 {
	return c.Upvotes - c.Downvotes
}

// VoteRepository handles vote persistence.
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new VoteRepository bound to db.
func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// FindByUserAndMeme retrieves the single vote for a (user, meme) pair.
// Returns gorm.ErrRecordNotFound when the pair has no vote.
func (r *VoteRepository) FindByUserAndMeme(ctx context.Context, userID, memeID string) (*domain.Vote, error) {
	var vote domain.Vote
	if err := r.db.WithContext(ctx).First(&vote, "user_id = ? AND meme_id = ?", userID, memeID).Error; err != nil {
		return nil, err
	}
	return &vote, nil
}

// CountForPair counts vote records for a (user, meme) pair. The unique
// index keeps this at zero or one.
func (r *VoteRepository) CountForPair(ctx context.Context, userID, memeID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Vote{}).
		Where("user_id = ? AND meme_id = ?", userID, memeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountsForMemes tallies upvotes and downvotes for each of the given memes
// with a single grouped query. Memes without votes are absent from the map.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - memeIDs: meme IDs to tally.
// Returns:
//   - map[string]VoteCounts: tallies keyed by meme ID.
//   - error: non-nil if the query fails.
func (r *VoteRepository) CountsForMemes(ctx context.Context, memeIDs []string) (map[string]VoteCounts, error) {
	counts := make(map[string]VoteCounts, len(memeIDs))
	if len(memeIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		MemeID   string
		VoteType domain.VoteType
		Total    int64
	}
	if err := r.db.WithContext(ctx).Model(&domain.Vote{}).
		Select("meme_id, vote_type, COUNT(*) AS total").
		Where("meme_id IN ?", memeIDs).
		Group("meme_id").
		Group("vote_type").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		c := counts[row.MemeID]
		switch row.VoteType {
		case domain.VoteUpvote:
			c.Upvotes = row.Total
		case domain.VoteDownvote:
			c.Downvotes = row.Total
		}
		counts[row.MemeID] = c
	}
	return counts, nil
}

// VotesByUserForMemes retrieves the caller's vote type per meme for the
// given page of memes.
func (r *VoteRepository) VotesByUserForMemes(ctx context.Context, userID string, memeIDs []string) (map[string]domain.VoteType, error) {
	votes := make(map[string]domain.VoteType, len(memeIDs))
	if len(memeIDs) == 0 {
		return votes, nil
	}

	var rows []domain.Vote
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND meme_id IN ?", userID, memeIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, v := range rows {
		votes[v.MemeID] = v.Type
	}
	return votes, nil
}
