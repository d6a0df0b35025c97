package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
)

// ReactionCounters holds a video's aggregate reaction counters after a
// toggle has been applied.
type ReactionCounters struct {
	Likes    int64
	Dislikes int64
}

// ReactionRepository defines the interface for per-user reaction records
// and the video aggregate counters they roll up into.
//
// The read-then-apply sequence performed by the caller is not guarded by
// any optimistic-concurrency check: concurrent toggles from the same user
// can desynchronize the aggregates from the per-user records. Apply itself
// is transactional, so a single toggle never half-applies.
type ReactionRepository interface {
	// Get retrieves the user's current reaction to a video.
	// Returns ReactionNone when no record exists.
	Get(ctx context.Context, videoID uuid.UUID, userID string) (model.ReactionState, error)

	// Apply persists the outcome of a reaction toggle in one transaction:
	// the per-user record is upserted (or deleted when next is
	// ReactionNone) and delta is added to the video's aggregate counters.
	// Returns the updated counters, or ErrVideoNotFound if the video does
	// not exist.
	Apply(ctx context.Context, videoID uuid.UUID, userID string, next model.ReactionState, delta model.CounterDelta) (ReactionCounters, error)
}
