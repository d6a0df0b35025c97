package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
)

const (
	// DefaultCommentPageSize is used when the caller supplies a non-positive limit.
	DefaultCommentPageSize = 20
	// MaxCommentPageSize caps the limit a caller may request.
	MaxCommentPageSize = 100
)

// AddCommentInput contains the parameters for posting a comment.
type AddCommentInput struct {
	VideoID     uuid.UUID
	UserID      string
	DisplayName string
	Body        string
	// ParentID is set when the comment replies to a top-level comment.
	ParentID *uuid.UUID
}

// CommentService handles posting and listing threaded comments.
type CommentService interface {
	// AddComment posts a comment or a reply on a video.
	// Returns repository.ErrVideoNotFound when the video does not exist,
	// repository.ErrCommentNotFound when the reply parent does not exist
	// on that video, and model.ErrReplyToReply when the parent is itself
	// a reply.
	AddComment(ctx context.Context, input AddCommentInput) (*model.Comment, error)

	// ListComments returns one page of top-level comments, newest first,
	// each with its direct replies. cursor is the opaque token from a
	// previous page, or empty for the first page.
	ListComments(ctx context.Context, videoID uuid.UUID, cursor string, limit int) (*repository.CommentPage, error)
}

type commentService struct {
	comments repository.CommentRepository
	videos   repository.VideoRepository
}

// NewCommentService creates a new CommentService instance.
func NewCommentService(comments repository.CommentRepository, videos repository.VideoRepository) CommentService {
	return &commentService{
		comments: comments,
		videos:   videos,
	}
}

// AddComment validates the comment against its video and persists it.
func (s *commentService) AddComment(ctx context.Context, input AddCommentInput) (*model.Comment, error) {
	// Existence check up front gives the caller ErrVideoNotFound instead
	// of a foreign-key violation surfacing as an internal error.
	if _, err := s.videos.GetByID(ctx, input.VideoID); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		// A parent on a different video does not exist as far as this
		// video's thread is concerned.
		if parent.VideoID != input.VideoID {
			return nil, repository.ErrCommentNotFound
		}
		// Threading is one level deep; a reply to a reply would never
		// show up in any listing.
		if parent.IsReply() {
			return nil, model.ErrReplyToReply
		}
	}

	comment, err := model.NewComment(input.VideoID, input.UserID, input.DisplayName, input.Body, input.ParentID)
	if err != nil {
		return nil, err
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// ListComments decodes the cursor, clamps the limit, and fetches one page.
func (s *commentService) ListComments(ctx context.Context, videoID uuid.UUID, cursor string, limit int) (*repository.CommentPage, error) {
	var cur *model.CommentCursor
	if cursor != "" {
		decoded, err := model.DecodeCommentCursor(cursor)
		if err != nil {
			return nil, err
		}
		cur = &decoded
	}

	if limit <= 0 {
		limit = DefaultCommentPageSize
	}
	if limit > MaxCommentPageSize {
		limit = MaxCommentPageSize
	}

	page, err := s.comments.ListByVideo(ctx, videoID, cur, limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return page, nil
}
