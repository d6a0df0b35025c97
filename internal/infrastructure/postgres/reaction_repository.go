package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
)

// DB extends DBTX with transaction support.
// pgxpool.Pool and pgxmock pools both satisfy it.
type DB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ReactionRepository implements repository.ReactionRepository using PostgreSQL.
// Per-user reactions live in the reactions table keyed by (video_id,
// user_id); aggregate counters live on the videos row.
type ReactionRepository struct {
	db DB
}

// NewReactionRepository creates a new ReactionRepository instance.
func NewReactionRepository(db DB) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Get retrieves the user's current reaction to a video.
// A missing record means no reaction.
func (r *ReactionRepository) Get(ctx context.Context, videoID uuid.UUID, userID string) (model.ReactionState, error) {
	const query = `
		SELECT state FROM reactions
		WHERE video_id = $1 AND user_id = $2
	`

	var state string
	err := r.db.QueryRow(ctx, query, videoID, userID).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ReactionNone, nil
		}
		return model.ReactionNone, fmt.Errorf("failed to get reaction: %w", err)
	}

	return model.ReactionState(state), nil
}

// Apply persists a toggle outcome atomically: the per-user record and the
// aggregate counter delta commit or roll back together. It does NOT guard
// against a concurrent toggle having changed the record since the caller
// read it; that read-modify-write race is inherited behavior.
func (r *ReactionRepository) Apply(ctx context.Context, videoID uuid.UUID, userID string, next model.ReactionState, delta model.CounterDelta) (repository.ReactionCounters, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return repository.ReactionCounters{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if next == model.ReactionNone {
		const del = `DELETE FROM reactions WHERE video_id = $1 AND user_id = $2`
		if _, err := tx.Exec(ctx, del, videoID, userID); err != nil {
			return repository.ReactionCounters{}, fmt.Errorf("failed to delete reaction: %w", err)
		}
	} else {
		const upsert = `
			INSERT INTO reactions (video_id, user_id, state, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (video_id, user_id) DO UPDATE SET state = $3, updated_at = $4
		`
		if _, err := tx.Exec(ctx, upsert, videoID, userID, next.String(), time.Now()); err != nil {
			return repository.ReactionCounters{}, fmt.Errorf("failed to upsert reaction: %w", err)
		}
	}

	const update = `
		UPDATE videos
		SET likes = likes + $2, dislikes = dislikes + $3, updated_at = $4
		WHERE id = $1
		RETURNING likes, dislikes
	`

	var counters repository.ReactionCounters
	err = tx.QueryRow(ctx, update, videoID, delta.Likes, delta.Dislikes, time.Now()).
		Scan(&counters.Likes, &counters.Dislikes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ReactionCounters{}, repository.ErrVideoNotFound
		}
		return repository.ReactionCounters{}, fmt.Errorf("failed to update counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return repository.ReactionCounters{}, fmt.Errorf("failed to commit reaction: %w", err)
	}

	return counters, nil
}

// Compile-time verification that ReactionRepository implements repository.ReactionRepository.
var _ repository.ReactionRepository = (*ReactionRepository)(nil)
