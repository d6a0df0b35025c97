package repository

import (
	"context"

	"github.com/google/uuid"
)

// TranscodeTask is the message the api publishes and the worker consumes.
// OriginalKey points at the uploaded source object, OutputKey at the prefix
// the HLS output lands under. RetryCount is incremented by the queue layer
// on each republish.
type TranscodeTask struct {
	VideoID     uuid.UUID `json:"video_id"`
	OriginalKey string    `json:"original_key"`
	OutputKey   string    `json:"output_key"`
	RetryCount  int       `json:"retry_count"`
}

// MessageQueue carries transcode tasks between the api and the worker.
type MessageQueue interface {
	// PublishTranscodeTask enqueues a task for the worker.
	PublishTranscodeTask(ctx context.Context, task TranscodeTask) error

	// ConsumeTranscodeTasks calls handler for each task. Blocks until the
	// context is cancelled or the broker connection drops.
	ConsumeTranscodeTasks(ctx context.Context, handler func(task TranscodeTask) error) error

	// Close releases the broker connection.
	Close() error
}
