package service

import (
	"context"
	"fmt"
	"time"

	"github.com/imagegenhub/server/internal/logger"
	"github.com/imagegenhub/server/internal/repository"
)

// AnonymousViewCooldown is the rolling window within which repeat views
// from the same address do not count again.
const AnonymousViewCooldown = 24 * time.Hour

// ViewService increments a meme's view counter at most once per qualifying
// viewer. Authenticated viewers count once ever; anonymous viewers count
// once per address per cooldown window.
type ViewService struct {
	views  *repository.ViewRepository
	memes  *repository.MemeRepository
	logger *logger.Logger
	now    func() time.Time
}

// NewViewService creates a new view service.
func NewViewService(views *repository.ViewRepository, memes *repository.MemeRepository, log *logger.Logger) *ViewService {
	return &ViewService{
		views:  views,
		memes:  memes,
		logger: log,
		now:    time.Now,
	}
}

// Record notes a view of the meme and bumps the counter when the viewer is
// eligible. A repeat view is a no-op, not an error.
//
// The authenticated path is an insert-or-ignore against the unique
// (meme, user) index, so two concurrent first views cannot double-count.
// The anonymous path is a windowed existence check followed by an insert;
// it stays best-effort.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - memeID: viewed meme.
//   - userID: authenticated viewer; nil for anonymous.
//   - ip: originating address, used for the anonymous cooldown.
// Returns:
//   - bool: true when the view counter was incremented.
//   - error: non-nil if a write fails; callers on read paths log and continue.
func (s *ViewService) Record(ctx context.Context, memeID string, userID *string, ip string) (bool, error) {
	if ip == "" {
		ip = "unknown"
	}

	if userID != nil {
		created, err := s.views.CreateForUser(ctx, memeID, *userID, ip)
		if err != nil {
			return false, fmt.Errorf("failed to record view: %w", err)
		}
		if !created {
			return false, nil
		}
	} else {
		cutoff := s.now().Add(-AnonymousViewCooldown)
		seen, err := s.views.ExistsAnonymousSince(ctx, memeID, ip, cutoff)
		if err != nil {
			return false, fmt.Errorf("failed to check recent views: %w", err)
		}
		if seen {
			return false, nil
		}
		if err := s.views.CreateAnonymous(ctx, memeID, ip); err != nil {
			return false, fmt.Errorf("failed to record view: %w", err)
		}
	}

	if err := s.memes.IncrementViews(ctx, memeID); err != nil {
		return false, fmt.Errorf("failed to increment view counter: %w", err)
	}

	s.log(ctx).Debugf("View recorded: meme=%s", memeID)
	return true, nil
}

// log returns a logger from context if available, otherwise the injected one.
func (s *ViewService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}
