package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
)

// VideoRepository defines the interface for video persistence operations.
// Implementations should be provided by the infrastructure layer (e.g., PostgreSQL).
type VideoRepository interface {
	// Create persists a new video entity.
	// Returns ErrDuplicateVideo if the video already exists.
	Create(ctx context.Context, video *model.Video) error

	// GetByID retrieves a video by its unique identifier.
	// Returns nil and ErrVideoNotFound if the video does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error)

	// GetByUserID retrieves all videos belonging to a user, newest first.
	// Returns empty slice if no videos exist for the user.
	GetByUserID(ctx context.Context, userID string) ([]*model.Video, error)

	// ListFeedCandidates retrieves all READY videos eligible for the
	// discoverability feed. Ordering is stable (created_at, id) so the
	// seeded shuffle sees the same input sequence on every page request.
	ListFeedCandidates(ctx context.Context) ([]*model.Video, error)

	// Update persists changes to an existing video entity.
	// Returns ErrVideoNotFound if the video does not exist.
	Update(ctx context.Context, video *model.Video) error

	// UpdateStatus updates only the status field of a video.
	// This is optimized for status transitions without full entity update.
	// Returns ErrVideoNotFound if the video does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error

	// IncrementViews atomically adds one to the video's view counter and
	// returns the new value. Returns ErrVideoNotFound if the video does
	// not exist.
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
}
