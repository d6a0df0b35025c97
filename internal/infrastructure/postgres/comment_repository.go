package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
)

const commentColumns = `id, video_id, user_id, display_name, body, parent_id, created_at`

// CommentRepository implements repository.CommentRepository using PostgreSQL.
type CommentRepository struct {
	db DBTX
}

// NewCommentRepository creates a new CommentRepository instance.
func NewCommentRepository(db DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create persists a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	const query = `
		INSERT INTO comments (id, video_id, user_id, display_name, body, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		comment.ID,
		comment.VideoID,
		comment.UserID,
		comment.DisplayName,
		comment.Body,
		comment.ParentID,
		comment.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// Foreign key violation: the parent comment (or video) is gone.
			return repository.ErrCommentNotFound
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// GetByID retrieves a single comment by its ID.
func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE id = $1
	`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query comment: %w", err)
	}
	defer rows.Close()

	comments, err := collectComments(rows)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, repository.ErrCommentNotFound
	}

	return comments[0], nil
}

// ListByVideo retrieves one page of top-level comments, newest first, with
// the direct replies of each. Keyset pagination over (created_at, id)
// avoids the drift of offset pagination when new comments arrive mid-scroll.
func (r *CommentRepository) ListByVideo(ctx context.Context, videoID uuid.UUID, cursor *model.CommentCursor, limit int) (*repository.CommentPage, error) {
	// Fetch one extra row to detect whether another page exists.
	var (
		rows pgx.Rows
		err  error
	)
	if cursor == nil {
		query := `
			SELECT ` + commentColumns + ` FROM comments
			WHERE video_id = $1 AND parent_id IS NULL
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`
		rows, err = r.db.Query(ctx, query, videoID, limit+1)
	} else {
		query := `
			SELECT ` + commentColumns + ` FROM comments
			WHERE video_id = $1 AND parent_id IS NULL AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4
		`
		rows, err = r.db.Query(ctx, query, videoID, cursor.CreatedAt, cursor.ID, limit+1)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments, err := collectComments(rows)
	if err != nil {
		return nil, err
	}

	page := &repository.CommentPage{
		Replies: make(map[uuid.UUID][]*model.Comment),
	}

	if len(comments) > limit {
		comments = comments[:limit]
		last := comments[len(comments)-1]
		page.NextCursor = &model.CommentCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	page.Comments = comments

	if len(comments) == 0 {
		return page, nil
	}

	parentIDs := make([]uuid.UUID, len(comments))
	for i, c := range comments {
		parentIDs[i] = c.ID
	}

	// The video_id filter is redundant for well-formed data (parents all
	// belong to videoID) but keeps a mis-filed reply from rendering in
	// another video's thread.
	replyQuery := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE parent_id = ANY($1) AND video_id = $2
		ORDER BY created_at ASC, id ASC
	`
	replyRows, err := r.db.Query(ctx, replyQuery, parentIDs, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer replyRows.Close()

	replies, err := collectComments(replyRows)
	if err != nil {
		return nil, err
	}

	for _, reply := range replies {
		page.Replies[*reply.ParentID] = append(page.Replies[*reply.ParentID], reply)
	}

	return page, nil
}

// collectComments drains rows into Comment models.
func collectComments(rows pgx.Rows) ([]*model.Comment, error) {
	var comments []*model.Comment
	for rows.Next() {
		var (
			comment  model.Comment
			parentID *uuid.UUID
		)
		err := rows.Scan(
			&comment.ID,
			&comment.VideoID,
			&comment.UserID,
			&comment.DisplayName,
			&comment.Body,
			&parentID,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comment.ParentID = parentID
		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// Compile-time verification that CommentRepository implements repository.CommentRepository.
var _ repository.CommentRepository = (*CommentRepository)(nil)
