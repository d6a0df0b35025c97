package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
)

// CommentPage is one page of top-level comments with their direct replies.
type CommentPage struct {
	Comments []*model.Comment
	// Replies maps a top-level comment ID to its replies, oldest first.
	Replies map[uuid.UUID][]*model.Comment
	// NextCursor is nil when no further pages exist.
	NextCursor *model.CommentCursor
}

// CommentRepository defines the interface for comment persistence.
type CommentRepository interface {
	// Create persists a new comment. Returns ErrCommentNotFound if the
	// comment replies to a parent row that no longer exists.
	Create(ctx context.Context, comment *model.Comment) error

	// GetByID retrieves a single comment.
	// Returns ErrCommentNotFound when no such comment exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)

	// ListByVideo retrieves top-level comments for a video, newest first,
	// resuming after cursor (nil for the first page), together with the
	// direct replies of each returned comment.
	ListByVideo(ctx context.Context, videoID uuid.UUID, cursor *model.CommentCursor, limit int) (*CommentPage, error)
}
