package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imagegenhub/server/internal/domain"
	"github.com/imagegenhub/server/internal/logger"
	"github.com/imagegenhub/server/internal/repository"
	"gorm.io/gorm"
)

// SortMode selects the ordering for meme listings.
type SortMode string

const (
	SortNew     SortMode = "new"
	SortTopDay  SortMode = "top_day"
	SortTopWeek SortMode = "top_week"
	SortTopAll  SortMode = "top_all"
)

// TrendingWindow selects the trailing range for the trending lookups.
type TrendingWindow string

const (
	TrendingDay  TrendingWindow = "day"
	TrendingWeek TrendingWindow = "week"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// MemeStats is the externally visible shape of a meme: the stored record
// plus derived counts computed from the vote and comment collections at
// read time.
type MemeStats struct {
	domain.Meme
	Upvotes      int64            `json:"upvotes"`
	Downvotes    int64            `json:"downvotes"`
	VoteCount    int64            `json:"voteCount"`
	UserVote     *domain.VoteType `json:"userVote"`
	CommentCount int64            `json:"commentCount"`
}

// ListResult is a page of memes with pagination totals.
type ListResult struct {
	Memes       []MemeStats `json:"memes"`
	TotalPages  int64       `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	TotalMemes  int64       `json:"totalMemes"`
}

// DetailResult is a single meme with its comments, newest first.
type DetailResult struct {
	Meme     MemeStats        `json:"meme"`
	Comments []domain.Comment `json:"comments"`
}

// CreateMemeInput carries the creator-settable meme fields. Nil style
// fields fall back to the defaults.
type CreateMemeInput struct {
	ImageURL     string               `json:"imageUrl"`
	TopText      string               `json:"topText"`
	BottomText   string               `json:"bottomText"`
	TextColor    string               `json:"textColor"`
	FontSize     int                  `json:"fontSize"`
	TextPosition *domain.TextPosition `json:"textPosition"`
	IsTemplate   bool                 `json:"isTemplate"`
}

// UpdateMemeInput carries optional field updates; nil fields are left as is.
type UpdateMemeInput struct {
	ImageURL     *string              `json:"imageUrl"`
	TopText      *string              `json:"topText"`
	BottomText   *string              `json:"bottomText"`
	TextColor    *string              `json:"textColor"`
	FontSize     *int                 `json:"fontSize"`
	TextPosition *domain.TextPosition `json:"textPosition"`
}

// MemeService owns meme CRUD and the read-time aggregation of derived
// vote/comment counts.
type MemeService struct {
	memes    *repository.MemeRepository
	votes    *repository.VoteRepository
	comments *repository.CommentRepository
	tracker  *ViewService
	logger   *logger.Logger
	now      func() time.Time
}

// NewMemeService creates a new meme service.
// Parameters:
//   - memes, votes, comments: repositories joined at read time.
//   - tracker: view service invoked as a side effect of Detail.
//   - log: logger instance.
// Returns:
//   - *MemeService: initialized meme service.
func NewMemeService(
	memes *repository.MemeRepository,
	votes *repository.VoteRepository,
	comments *repository.CommentRepository,
	tracker *ViewService,
	log *logger.Logger,
) *MemeService {
	return &MemeService{
		memes:    memes,
		votes:    votes,
		comments: comments,
		tracker:  tracker,
		logger:   log,
		now:      time.Now,
	}
}

// Create stores a new meme owned by userID. An image reference is required;
// unset style fields get the standard caption defaults.
func (s *MemeService) Create(ctx context.Context, userID string, in CreateMemeInput) (*domain.Meme, error) {
	if in.ImageURL == "" {
		return nil, ErrMissingImage
	}

	meme := &domain.Meme{
		CreatorID:  userID,
		ImageURL:   in.ImageURL,
		TopText:    in.TopText,
		BottomText: in.BottomText,
		TextColor:  in.TextColor,
		FontSize:   in.FontSize,
		IsTemplate: in.IsTemplate,
	}
	if meme.TextColor == "" {
		meme.TextColor = domain.DefaultTextColor
	}
	if meme.FontSize == 0 {
		meme.FontSize = domain.DefaultFontSize
	}
	if in.TextPosition != nil {
		meme.TextPosition = *in.TextPosition
	} else {
		meme.TextPosition = domain.DefaultTextPosition()
	}

	if err := s.memes.Create(ctx, meme); err != nil {
		return nil, fmt.Errorf("failed to create meme: %w", err)
	}

	s.log(ctx).Infof("Meme created: id=%s", meme.ID)
	return meme, nil
}

// Update applies caption/style changes to a meme the caller owns.
func (s *MemeService) Update(ctx context.Context, userID, memeID string, in UpdateMemeInput) (*domain.Meme, error) {
	meme, err := s.getOwned(ctx, userID, memeID)
	if err != nil {
		return nil, err
	}

	if in.ImageURL != nil && *in.ImageURL != "" {
		meme.ImageURL = *in.ImageURL
	}
	if in.TopText != nil {
		meme.TopText = *in.TopText
	}
	if in.BottomText != nil {
		meme.BottomText = *in.BottomText
	}
	if in.TextColor != nil && *in.TextColor != "" {
		meme.TextColor = *in.TextColor
	}
	if in.FontSize != nil && *in.FontSize > 0 {
		meme.FontSize = *in.FontSize
	}
	if in.TextPosition != nil {
		meme.TextPosition = *in.TextPosition
	}

	if err := s.memes.Update(ctx, meme); err != nil {
		return nil, fmt.Errorf("failed to update meme: %w", err)
	}
	return meme, nil
}

// Delete removes a meme the caller owns, cascading its votes, comments,
// and view records.
func (s *MemeService) Delete(ctx context.Context, userID, memeID string) error {
	if _, err := s.getOwned(ctx, userID, memeID); err != nil {
		return err
	}
	if err := s.memes.DeleteCascade(ctx, memeID); err != nil {
		return fmt.Errorf("failed to delete meme: %w", err)
	}
	s.log(ctx).Infof("Meme deleted: id=%s", memeID)
	return nil
}

// Flag increments a meme's flag counter. Any authenticated user may flag.
func (s *MemeService) Flag(ctx context.Context, memeID string) error {
	if _, err := s.get(ctx, memeID); err != nil {
		return err
	}
	if err := s.memes.IncrementFlags(ctx, memeID); err != nil {
		return fmt.Errorf("failed to flag meme: %w", err)
	}
	return nil
}

// ListQuery carries the listing parameters. Zero values mean page 1, the
// default page size, newest-first order, and no template filter.
type ListQuery struct {
	Sort          SortMode
	Page          int
	Limit         int
	TemplatesOnly bool
}

// List returns a page of memes in the requested order with derived counts
// attached. Page is 1-based; out-of-range inputs are clamped.
func (s *MemeService) List(ctx context.Context, q ListQuery, callerID *string) (*ListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	offset := (q.Page - 1) * q.Limit

	since := s.windowStart(q.Sort)

	var memes []domain.Meme
	var err error
	switch q.Sort {
	case SortTopDay, SortTopWeek, SortTopAll:
		memes, err = s.memes.ListTopByScore(ctx, since, q.Limit, offset, q.TemplatesOnly)
	default:
		memes, err = s.memes.ListNewest(ctx, q.Limit, offset, q.TemplatesOnly)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list memes: %w", err)
	}

	total, err := s.memes.Count(ctx, since, q.TemplatesOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to count memes: %w", err)
	}

	stats, err := s.withStats(ctx, memes, callerID)
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(q.Limit)
	if total%int64(q.Limit) != 0 {
		totalPages++
	}

	return &ListResult{
		Memes:       stats,
		TotalPages:  totalPages,
		CurrentPage: q.Page,
		TotalMemes:  total,
	}, nil
}

// Detail fetches a single meme, records the view as a best-effort side
// effect, and attaches derived counts and the ordered comment list.
// View-tracking failures are logged, never propagated.
func (s *MemeService) Detail(ctx context.Context, memeID string, callerID *string, ip string) (*DetailResult, error) {
	meme, err := s.get(ctx, memeID)
	if err != nil {
		return nil, err
	}

	counted, err := s.tracker.Record(ctx, memeID, callerID, ip)
	if err != nil {
		s.log(ctx).Warnf("View tracking failed: meme=%s, error=%v", memeID, err)
	} else if counted {
		meme.Views++
	}

	stats, err := s.withStats(ctx, []domain.Meme{*meme}, callerID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListForMeme(ctx, memeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return &DetailResult{
		Meme:     stats[0],
		Comments: comments,
	}, nil
}

// Trending returns the single top-scoring meme of the window, or nil when
// the window holds no memes.
func (s *MemeService) Trending(ctx context.Context, window TrendingWindow) (*MemeStats, error) {
	var since time.Time
	switch window {
	case TrendingWeek:
		since = s.now().Add(-7 * 24 * time.Hour)
	default:
		since = s.now().Add(-24 * time.Hour)
	}

	memes, err := s.memes.ListTopByScore(ctx, &since, 1, 0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to query trending memes: %w", err)
	}
	if len(memes) == 0 {
		return nil, nil
	}

	stats, err := s.withStats(ctx, memes, nil)
	if err != nil {
		return nil, err
	}
	return &stats[0], nil
}

// Dashboard returns the caller's own memes, newest first, with per-meme
// stats.
func (s *MemeService) Dashboard(ctx context.Context, userID string) ([]MemeStats, error) {
	memes, err := s.memes.ListByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user memes: %w", err)
	}
	return s.withStats(ctx, memes, nil)
}

// windowStart maps a sort mode to its trailing window start, or nil when
// the mode is unwindowed.
func (s *MemeService) windowStart(sort SortMode) *time.Time {
	switch sort {
	case SortTopDay:
		t := s.now().Add(-24 * time.Hour)
		return &t
	case SortTopWeek:
		t := s.now().Add(-7 * 24 * time.Hour)
		return &t
	default:
		return nil
	}
}

// withStats joins derived vote and comment counts onto a page of memes.
// Counts come from grouped queries over the vote/comment collections, not
// from denormalized fields.
func (s *MemeService) withStats(ctx context.Context, memes []domain.Meme, callerID *string) ([]MemeStats, error) {
	ids := make([]string, len(memes))
	for i, m := range memes {
		ids[i] = m.ID
	}

	voteCounts, err := s.votes.CountsForMemes(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	commentCounts, err := s.comments.CountsForMemes(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	var callerVotes map[string]domain.VoteType
	if callerID != nil {
		callerVotes, err = s.votes.VotesByUserForMemes(ctx, *callerID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to look up caller votes: %w", err)
		}
	}

	stats := make([]MemeStats, len(memes))
	for i, m := range memes {
		vc := voteCounts[m.ID]
		entry := MemeStats{
			Meme:         m,
			Upvotes:      vc.Upvotes,
			Downvotes:    vc.Downvotes,
			VoteCount:    vc.Net(),
			CommentCount: commentCounts[m.ID],
		}
		if kind, ok := callerVotes[m.ID]; ok {
			v := kind
			entry.UserVote = &v
		}
		stats[i] = entry
	}
	return stats, nil
}

// log returns a logger from context if available, otherwise the injected one.
func (s *MemeService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

func (s *MemeService) get(ctx context.Context, memeID string) (*domain.Meme, error) {
	meme, err := s.memes.GetByID(ctx, memeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up meme: %w", err)
	}
	return meme, nil
}

func (s *MemeService) getOwned(ctx context.Context, userID, memeID string) (*domain.Meme, error) {
	meme, err := s.get(ctx, memeID)
	if err != nil {
		return nil, err
	}
	if meme.CreatorID != userID {
		return nil, ErrForbidden
	}
	return meme, nil
}
