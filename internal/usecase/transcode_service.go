package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/cache"
	"github.com/hikaru-dev/clipflow/internal/transcoder"
)

const (
	// DefaultMaxRetries is the default maximum number of retry attempts before marking as failed.
	DefaultMaxRetries = 3

	// thumbnailFileName is the name of the extracted poster image within
	// the video's output prefix.
	thumbnailFileName = "thumbnail.jpg"
)

// TranscodeServiceConfig holds configuration for TranscodeService.
type TranscodeServiceConfig struct {
	// TempDir is the base directory for temporary files during transcoding.
	TempDir string
	// MaxRetries is the maximum number of retry attempts before marking video as failed.
	MaxRetries int
	// Variants are the ABR quality levels to produce.
	Variants []transcoder.Variant
}

// DefaultTranscodeServiceConfig returns the default configuration.
func DefaultTranscodeServiceConfig() TranscodeServiceConfig {
	return TranscodeServiceConfig{
		TempDir:    os.TempDir(),
		MaxRetries: DefaultMaxRetries,
		Variants:   transcoder.DefaultABRVariants(),
	}
}

// TranscodeService defines the interface for video transcoding operations.
type TranscodeService interface {
	// ProcessTask handles a transcoding task from the message queue.
	// Returns nil on success or permanent failure (max retries exceeded).
	// Returns error for transient failures that should trigger a retry.
	ProcessTask(ctx context.Context, task repository.TranscodeTask) error
}

type transcodeService struct {
	repo       repository.VideoRepository
	storage    repository.ObjectStorage
	transcoder transcoder.Transcoder
	cache      cache.VideoCache

	tempDir    string
	maxRetries int
	variants   []transcoder.Variant
}

// NewTranscodeService creates a new TranscodeService instance.
// videoCache may be nil when the worker runs without Redis.
func NewTranscodeService(
	repo repository.VideoRepository,
	storage repository.ObjectStorage,
	tc transcoder.Transcoder,
	videoCache cache.VideoCache,
	cfg TranscodeServiceConfig,
) TranscodeService {
	variants := cfg.Variants
	if len(variants) == 0 {
		variants = transcoder.DefaultABRVariants()
	}
	return &transcodeService{
		repo:       repo,
		storage:    storage,
		transcoder: tc,
		cache:      videoCache,
		tempDir:    cfg.TempDir,
		maxRetries: cfg.MaxRetries,
		variants:   variants,
	}
}

// ProcessTask handles a transcoding task.
// It downloads the original video, transcodes it to ABR variants, extracts
// a thumbnail, uploads the results, and updates the video record.
func (s *transcodeService) ProcessTask(ctx context.Context, task repository.TranscodeTask) error {
	// Check if max retries exceeded - mark as failed and return nil (ack the message)
	if task.RetryCount >= s.maxRetries {
		if err := s.markVideoFailed(ctx, task.VideoID); err != nil {
			slog.Error("failed to mark video as failed",
				"video_id", task.VideoID,
				"retry_count", task.RetryCount,
				"error", err,
			)
			// Still return nil to ack the message
			// The video remains in PROCESSING state, which is acceptable
			return nil
		}
		return nil
	}

	// Create temporary working directory for this task
	workDir, err := s.createWorkDir(task.VideoID)
	if err != nil {
		return fmt.Errorf("create work directory: %w", err)
	}
	defer s.cleanup(workDir)

	// Download original video
	inputPath, err := s.downloadOriginal(ctx, task.OriginalKey, workDir)
	if err != nil {
		return fmt.Errorf("download original: %w", err)
	}

	// Create output directory for HLS files
	outputDir := filepath.Join(workDir, "hls")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Transcode to ABR variants
	abrOutput, err := s.transcoder.TranscodeToABR(ctx, inputPath, outputDir, s.variants)
	if err != nil {
		return fmt.Errorf("transcode: %w", err)
	}

	// Extract poster thumbnail. Failure is not fatal: the video plays fine
	// without one, the key just stays empty.
	thumbnailKey, err := s.extractThumbnail(ctx, inputPath, workDir, task.OutputKey)
	if err != nil {
		slog.Warn("thumbnail extraction failed",
			"video_id", task.VideoID,
			"error", err,
		)
		thumbnailKey = ""
	}

	// Upload HLS files to object storage
	manifestKey, err := s.uploadABRFiles(ctx, task.OutputKey, abrOutput)
	if err != nil {
		return fmt.Errorf("upload HLS files: %w", err)
	}

	// Update video status to READY
	if err := s.markVideoReady(ctx, task.VideoID, manifestKey, thumbnailKey); err != nil {
		return fmt.Errorf("update video status: %w", err)
	}

	return nil
}

// createWorkDir creates a temporary directory for processing a specific video.
func (s *transcodeService) createWorkDir(videoID uuid.UUID) (string, error) {
	workDir := filepath.Join(s.tempDir, "clipflow", videoID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	return workDir, nil
}

// cleanup removes the temporary working directory.
func (s *transcodeService) cleanup(workDir string) {
	_ = os.RemoveAll(workDir)
}

// downloadOriginal downloads the original video from object storage to a local file.
func (s *transcodeService) downloadOriginal(ctx context.Context, key, workDir string) (string, error) {
	reader, err := s.storage.Download(ctx, key)
	if err != nil {
		return "", fmt.Errorf("storage download: %w", err)
	}
	defer func() { _ = reader.Close() }()

	// Extract filename from key or use default
	filename := filepath.Base(key)
	if filename == "." || filename == "/" {
		filename = "original.mp4"
	}

	localPath := filepath.Join(workDir, filename)
	file, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create local file: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("copy to local file: %w", err)
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close local file: %w", err)
	}

	return localPath, nil
}

// extractThumbnail grabs a poster frame from the original and uploads it.
// Returns the storage key of the uploaded image.
func (s *transcodeService) extractThumbnail(ctx context.Context, inputPath, workDir, outputKeyPrefix string) (string, error) {
	localPath := filepath.Join(workDir, thumbnailFileName)
	if err := s.transcoder.ExtractThumbnail(ctx, inputPath, localPath); err != nil {
		return "", fmt.Errorf("extract thumbnail: %w", err)
	}

	key := outputKeyPrefix + thumbnailFileName
	if err := s.uploadFile(ctx, localPath, key, "image/jpeg"); err != nil {
		return "", fmt.Errorf("upload thumbnail: %w", err)
	}

	return key, nil
}

// uploadABRFiles uploads the master manifest plus every variant playlist
// and segment to object storage, mirroring the local directory layout
// under the output key prefix.
// Returns the full key path to the master manifest.
func (s *transcodeService) uploadABRFiles(ctx context.Context, outputKeyPrefix string, abrOutput *transcoder.ABROutput) (string, error) {
	// Upload master manifest
	masterKey := outputKeyPrefix + filepath.Base(abrOutput.MasterManifestPath)
	if err := s.uploadFile(ctx, abrOutput.MasterManifestPath, masterKey, "application/vnd.apple.mpegurl"); err != nil {
		return "", fmt.Errorf("upload master manifest: %w", err)
	}

	for _, variant := range abrOutput.Variants {
		variantPrefix := outputKeyPrefix + variant.Variant.Name + "/"

		manifestKey := variantPrefix + filepath.Base(variant.ManifestPath)
		if err := s.uploadFile(ctx, variant.ManifestPath, manifestKey, "application/vnd.apple.mpegurl"); err != nil {
			return "", fmt.Errorf("upload variant %s manifest: %w", variant.Variant.Name, err)
		}

		for _, segmentPath := range variant.SegmentPaths {
			segmentKey := variantPrefix + filepath.Base(segmentPath)
			if err := s.uploadFile(ctx, segmentPath, segmentKey, "video/mp2t"); err != nil {
				return "", fmt.Errorf("upload segment %s: %w", filepath.Base(segmentPath), err)
			}
		}
	}

	return masterKey, nil
}

// uploadFile uploads a single file to object storage.
func (s *transcodeService) uploadFile(ctx context.Context, localPath, key, contentType string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := s.storage.Upload(ctx, key, file, contentType); err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}

	return nil
}

// markVideoReady updates the video status to READY and records the output keys.
func (s *transcodeService) markVideoReady(ctx context.Context, videoID uuid.UUID, hlsKey, thumbnailKey string) error {
	video, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		return fmt.Errorf("get video: %w", err)
	}

	// Validate current status
	if video.Status != model.StatusProcessing {
		// Video is not in expected state - log but don't fail
		return nil
	}

	video.SetHLSURL(hlsKey)
	if thumbnailKey != "" {
		video.SetThumbnailURL(thumbnailKey)
	}
	if err := video.TransitionTo(model.StatusReady); err != nil {
		return fmt.Errorf("transition to ready: %w", err)
	}

	if err := s.repo.Update(ctx, video); err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	s.invalidateCache(ctx, videoID)

	return nil
}

// markVideoFailed updates the video status to FAILED.
func (s *transcodeService) markVideoFailed(ctx context.Context, videoID uuid.UUID) error {
	video, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		return fmt.Errorf("get video: %w", err)
	}

	// Only transition if in PROCESSING state
	if video.Status != model.StatusProcessing {
		return nil
	}

	if err := video.TransitionTo(model.StatusFailed); err != nil {
		return fmt.Errorf("transition to failed: %w", err)
	}

	if err := s.repo.Update(ctx, video); err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	s.invalidateCache(ctx, videoID)

	return nil
}

// invalidateCache drops cached metadata after a status change so readers
// do not see a stale PROCESSING record for the cache TTL.
func (s *transcodeService) invalidateCache(ctx context.Context, videoID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, videoID); err != nil {
		slog.Warn("failed to invalidate cache after status change",
			"video_id", videoID,
			"error", err,
		)
	}
}
