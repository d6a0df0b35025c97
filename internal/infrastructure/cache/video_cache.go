package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
)

// VideoCache is the metadata cache consulted before the videos table.
// Implementations own serialization; callers only see *model.Video.
type VideoCache interface {
	// Get returns the cached video, or nil, nil on a miss.
	Get(ctx context.Context, videoID uuid.UUID) (*model.Video, error)

	// Set stores a video for ttl.
	Set(ctx context.Context, video *model.Video, ttl time.Duration) error

	// Delete evicts a video. Evicting an absent key is not an error.
	Delete(ctx context.Context, videoID uuid.UUID) error
}
