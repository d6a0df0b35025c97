package model

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Comment represents a single comment on a video. A comment with a
// non-nil ParentID is a direct reply; threading is one level deep.
type Comment struct {
	ID          uuid.UUID
	VideoID     uuid.UUID
	UserID      string
	DisplayName string
	Body        string
	ParentID    *uuid.UUID
	CreatedAt   time.Time
}

var (
	ErrEmptyCommentBody   = errors.New("comment body cannot be empty")
	ErrCommentBodyTooLong = errors.New("comment body exceeds maximum length of 1000 characters")
	ErrReplyToReply       = errors.New("cannot reply to a reply")
	ErrInvalidCursor      = errors.New("invalid pagination cursor")
)

const maxCommentBodyLength = 1000

// NewComment creates a new Comment. parentID may be nil for a top-level
// comment.
func NewComment(videoID uuid.UUID, userID, displayName, body string, parentID *uuid.UUID) (*Comment, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyCommentBody
	}
	if len(body) > maxCommentBodyLength {
		return nil, ErrCommentBodyTooLong
	}

	return &Comment{
		ID:          uuid.New(),
		VideoID:     videoID,
		UserID:      userID,
		DisplayName: displayName,
		Body:        body,
		ParentID:    parentID,
		CreatedAt:   time.Now(),
	}, nil
}

// IsReply reports whether the comment is a reply to another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// CommentCursor is a keyset pagination position over (created_at, id).
// Comments are listed newest first, so the cursor marks the oldest
// comment already returned.
type CommentCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Encode serializes the cursor to an opaque URL-safe string.
func (c CommentCursor) Encode() string {
	raw := fmt.Sprintf("%s|%s", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCommentCursor parses a cursor produced by Encode.
// Returns ErrInvalidCursor for anything it did not produce itself.
func DecodeCommentCursor(s string) (CommentCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return CommentCursor{}, ErrInvalidCursor
	}

	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return CommentCursor{}, ErrInvalidCursor
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return CommentCursor{}, ErrInvalidCursor
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return CommentCursor{}, ErrInvalidCursor
	}

	return CommentCursor{CreatedAt: createdAt, ID: id}, nil
}
