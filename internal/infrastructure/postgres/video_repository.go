package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const videoColumns = `id, user_id, title, description, status, original_key, hls_url, thumbnail_url, views, likes, dislikes, created_at, updated_at`

// VideoRepository implements repository.VideoRepository using PostgreSQL.
type VideoRepository struct {
	db DBTX
}

// NewVideoRepository creates a new VideoRepository instance.
func NewVideoRepository(db DBTX) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create persists a new video entity.
func (r *VideoRepository) Create(ctx context.Context, video *model.Video) error {
	const query = `
		INSERT INTO videos (id, user_id, title, description, status, original_key, hls_url, thumbnail_url, views, likes, dislikes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		video.ID,
		video.UserID,
		video.Title,
		video.Description,
		video.Status.String(),
		nullString(video.OriginalKey),
		nullString(video.HLSURL),
		nullString(video.ThumbnailURL),
		video.Views,
		video.Likes,
		video.Dislikes,
		video.CreatedAt,
		video.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateVideo
		}
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

// GetByID retrieves a video by its unique identifier.
func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	video, err := scanVideo(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video by ID: %w", err)
	}

	return video, nil
}

// GetByUserID retrieves all videos belonging to a user, newest first.
func (r *VideoRepository) GetByUserID(ctx context.Context, userID string) ([]*model.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos by user ID: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}

// ListFeedCandidates retrieves all READY videos in a stable order.
// The fixed (created_at, id) ordering keeps the seeded feed shuffle
// deterministic across page requests.
func (r *VideoRepository) ListFeedCandidates(ctx context.Context) ([]*model.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE status = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, model.StatusReady.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query feed candidates: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}

// Update persists changes to an existing video entity.
func (r *VideoRepository) Update(ctx context.Context, video *model.Video) error {
	const query = `
		UPDATE videos
		SET title = $2, description = $3, status = $4, original_key = $5, hls_url = $6, thumbnail_url = $7, updated_at = $8
		WHERE id = $1
	`

	video.UpdatedAt = time.Now()

	tag, err := r.db.Exec(ctx, query,
		video.ID,
		video.Title,
		video.Description,
		video.Status.String(),
		nullString(video.OriginalKey),
		nullString(video.HLSURL),
		nullString(video.ThumbnailURL),
		video.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}

	return nil
}

// UpdateStatus updates only the status field of a video.
func (r *VideoRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	const query = `
		UPDATE videos
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, status.String(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update video status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}

	return nil
}

// IncrementViews atomically adds one to the video's view counter.
func (r *VideoRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	const query = `
		UPDATE videos
		SET views = views + 1
		WHERE id = $1
		RETURNING views
	`

	var views int64
	if err := r.db.QueryRow(ctx, query, id).Scan(&views); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrVideoNotFound
		}
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}

	return views, nil
}

// videoRow abstracts pgx.Row and pgx.Rows for scanning.
type videoRow interface {
	Scan(dest ...any) error
}

// scanVideo scans a single row into a Video model.
func scanVideo(row videoRow) (*model.Video, error) {
	var (
		video        model.Video
		status       string
		originalKey  *string
		hlsURL       *string
		thumbnailURL *string
	)

	err := row.Scan(
		&video.ID,
		&video.UserID,
		&video.Title,
		&video.Description,
		&status,
		&originalKey,
		&hlsURL,
		&thumbnailURL,
		&video.Views,
		&video.Likes,
		&video.Dislikes,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	video.Status = model.Status(status)
	if originalKey != nil {
		video.OriginalKey = *originalKey
	}
	if hlsURL != nil {
		video.HLSURL = *hlsURL
	}
	if thumbnailURL != nil {
		video.ThumbnailURL = *thumbnailURL
	}

	return &video, nil
}

// collectVideos drains rows into Video models.
func collectVideos(rows pgx.Rows) ([]*model.Video, error) {
	var videos []*model.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}

	return videos, nil
}

// nullString returns nil for empty strings, otherwise returns a pointer to the string.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Compile-time verification that VideoRepository implements repository.VideoRepository.
var _ repository.VideoRepository = (*VideoRepository)(nil)
