package transcoder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpegConfig holds the knobs for the ffmpeg-backed transcoder.
type FFmpegConfig struct {
	// FFmpegPath locates the ffmpeg binary; empty means "ffmpeg" on PATH.
	FFmpegPath string

	// VideoHeight is the target height for single-quality transcodes.
	// Width follows from the source aspect ratio.
	VideoHeight int

	// VideoCodec, VideoPreset and AudioCodec are passed straight through
	// to ffmpeg (-c:v, -preset, -c:a).
	VideoCodec  string
	VideoPreset string
	AudioCodec  string

	// HLSSegmentDuration is the target segment length in seconds.
	HLSSegmentDuration int

	// HLSPlaylistType is "vod" for finished uploads, which closes the
	// playlist with EXT-X-ENDLIST.
	HLSPlaylistType string

	// ThumbnailOffsetSeconds is where in the video the poster frame is
	// taken. Frame zero is often black or a fade-in.
	ThumbnailOffsetSeconds int
}

// DefaultFFmpegConfig returns the settings both worker deployments run with.
func DefaultFFmpegConfig() FFmpegConfig {
	return FFmpegConfig{
		FFmpegPath:         "ffmpeg",
		VideoHeight:        720,
		VideoCodec:         "libx264",
		VideoPreset:        "fast",
		AudioCodec:         "aac",
		HLSSegmentDuration: 6,
		HLSPlaylistType:    "vod",

		ThumbnailOffsetSeconds: 1,
	}
}

// FFmpegTranscoder shells out to the ffmpeg CLI.
type FFmpegTranscoder struct {
	config FFmpegConfig
}

var _ Transcoder = (*FFmpegTranscoder)(nil)

// NewFFmpegTranscoder creates a transcoder with the given configuration.
func NewFFmpegTranscoder(cfg FFmpegConfig) *FFmpegTranscoder {
	return &FFmpegTranscoder{
		config: cfg,
	}
}

// runFFmpeg executes ffmpeg with args and waits for it. A failure caused
// by context cancellation is reported as cancellation, not as an ffmpeg
// error.
func (t *FFmpegTranscoder) runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, t.config.FFmpegPath, args...)
	// ffmpeg writes progress to stderr; none of it is useful in logs.
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("transcoding cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}
	return nil
}

// TranscodeToHLS produces a single-quality HLS rendition in outputDir.
func (t *FFmpegTranscoder) TranscodeToHLS(ctx context.Context, inputPath, outputDir string) (*HLSOutput, error) {
	if err := t.validateInput(inputPath); err != nil {
		return nil, err
	}
	if err := t.validateOutputDir(outputDir); err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(outputDir, "playlist.m3u8")
	segmentPattern := filepath.Join(outputDir, "segment_%03d.ts")

	if err := t.runFFmpeg(ctx, t.buildFFmpegArgs(inputPath, manifestPath, segmentPattern)); err != nil {
		return nil, err
	}

	segments, err := t.collectSegments(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to collect segments: %w", err)
	}

	return &HLSOutput{
		ManifestPath: manifestPath,
		SegmentPaths: segments,
	}, nil
}

// validateInput rejects missing inputs and directories before ffmpeg gets
// a chance to produce a less readable error.
func (t *FFmpegTranscoder) validateInput(inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", inputPath)
		}
		return fmt.Errorf("failed to access input file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("input path is a directory, expected a file: %s", inputPath)
	}

	return nil
}

func (t *FFmpegTranscoder) validateOutputDir(outputDir string) error {
	info, err := os.Stat(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", outputDir)
		}
		return fmt.Errorf("failed to access output directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("output path is not a directory: %s", outputDir)
	}

	return nil
}

func (t *FFmpegTranscoder) buildFFmpegArgs(inputPath, manifestPath, segmentPattern string) []string {
	// scale=-2 keeps the width even, which libx264 requires.
	scaleFilter := fmt.Sprintf("scale=-2:%d", t.config.VideoHeight)

	return []string{
		"-i", inputPath,
		"-vf", scaleFilter,
		"-c:v", t.config.VideoCodec,
		"-preset", t.config.VideoPreset,
		"-c:a", t.config.AudioCodec,
		"-f", "hls",
		"-hls_time", fmt.Sprintf("%d", t.config.HLSSegmentDuration),
		"-hls_list_size", "0", // keep every segment in the playlist
		"-hls_playlist_type", t.config.HLSPlaylistType,
		"-hls_segment_filename", segmentPattern,
		"-y",
		manifestPath,
	}
}

// collectSegments lists the .ts files ffmpeg left in outputDir. Zero
// segments means the encode silently produced nothing, which is an error.
func (t *FFmpegTranscoder) collectSegments(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var segments []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".ts") {
			segments = append(segments, filepath.Join(outputDir, entry.Name()))
		}
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments generated in output directory")
	}

	return segments, nil
}

// DefaultABRVariants is the ladder every upload is encoded to.
func DefaultABRVariants() []Variant {
	return []Variant{
		{Name: "1080p", Height: 1080, Bitrate: 5000000},
		{Name: "720p", Height: 720, Bitrate: 2500000},
		{Name: "360p", Height: 360, Bitrate: 800000},
	}
}

// TranscodeToABR encodes one rendition per variant, then writes the master
// playlist referencing them. Variants run sequentially; a transcode worker
// handles one task at a time anyway (queue prefetch is 1), so parallel
// encodes would only fight over the same cores.
func (t *FFmpegTranscoder) TranscodeToABR(ctx context.Context, inputPath, outputDir string, variants []Variant) (*ABROutput, error) {
	if err := t.validateInput(inputPath); err != nil {
		return nil, err
	}
	if err := t.validateOutputDir(outputDir); err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("at least one variant is required")
	}

	var variantOutputs []VariantOutput
	for _, variant := range variants {
		variantDir := filepath.Join(outputDir, variant.Name)
		if err := os.MkdirAll(variantDir, 0755); err != nil {
			return nil, fmt.Errorf("create variant directory %s: %w", variant.Name, err)
		}

		output, err := t.transcodeVariant(ctx, inputPath, variantDir, variant)
		if err != nil {
			return nil, fmt.Errorf("transcode variant %s: %w", variant.Name, err)
		}

		variantOutputs = append(variantOutputs, *output)
	}

	masterPath := filepath.Join(outputDir, "master.m3u8")
	if err := t.generateMasterPlaylist(masterPath, variantOutputs); err != nil {
		return nil, fmt.Errorf("generate master playlist: %w", err)
	}

	return &ABROutput{
		MasterManifestPath: masterPath,
		Variants:           variantOutputs,
	}, nil
}

func (t *FFmpegTranscoder) transcodeVariant(ctx context.Context, inputPath, variantDir string, variant Variant) (*VariantOutput, error) {
	manifestPath := filepath.Join(variantDir, "playlist.m3u8")
	segmentPattern := filepath.Join(variantDir, "segment_%03d.ts")

	if err := t.runFFmpeg(ctx, t.buildVariantFFmpegArgs(inputPath, manifestPath, segmentPattern, variant)); err != nil {
		return nil, err
	}

	segments, err := t.collectSegments(variantDir)
	if err != nil {
		return nil, fmt.Errorf("collect segments: %w", err)
	}

	return &VariantOutput{
		Variant:      variant,
		ManifestPath: manifestPath,
		SegmentPaths: segments,
	}, nil
}

func (t *FFmpegTranscoder) buildVariantFFmpegArgs(inputPath, manifestPath, segmentPattern string, variant Variant) []string {
	scaleFilter := fmt.Sprintf("scale=-2:%d", variant.Height)

	return []string{
		"-i", inputPath,
		"-vf", scaleFilter,
		"-c:v", t.config.VideoCodec,
		"-preset", t.config.VideoPreset,
		"-b:v", fmt.Sprintf("%d", variant.Bitrate),
		"-c:a", t.config.AudioCodec,
		"-f", "hls",
		"-hls_time", fmt.Sprintf("%d", t.config.HLSSegmentDuration),
		"-hls_list_size", "0",
		"-hls_playlist_type", t.config.HLSPlaylistType,
		"-hls_segment_filename", segmentPattern,
		"-y",
		manifestPath,
	}
}

// generateMasterPlaylist writes the master.m3u8 tying the variant
// playlists together. The advertised resolution assumes 16:9; players
// treat it as a hint, the variant playlists carry the real dimensions.
func (t *FFmpegTranscoder) generateMasterPlaylist(path string, variants []VariantOutput) error {
	var sb strings.Builder
	sb.WriteString("#EXTM3U\n")
	sb.WriteString("#EXT-X-VERSION:3\n\n")

	for _, v := range variants {
		width := v.Variant.Height * 16 / 9
		if width%2 != 0 {
			width++
		}

		sb.WriteString(fmt.Sprintf(
			"#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d\n",
			v.Variant.Bitrate, width, v.Variant.Height,
		))
		sb.WriteString(fmt.Sprintf("%s/playlist.m3u8\n\n", v.Variant.Name))
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write master playlist: %w", err)
	}

	return nil
}

// ExtractThumbnail captures one frame near the start of the video and
// writes it to outputPath as a JPEG.
func (t *FFmpegTranscoder) ExtractThumbnail(ctx context.Context, inputPath, outputPath string) error {
	if err := t.validateInput(inputPath); err != nil {
		return err
	}

	args := []string{
		// -ss before -i seeks on the demuxer, so ffmpeg does not decode
		// everything up to the offset.
		"-ss", fmt.Sprintf("%d", t.config.ThumbnailOffsetSeconds),
		"-i", inputPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		outputPath,
	}

	if err := t.runFFmpeg(ctx, args); err != nil {
		return err
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("thumbnail not generated: %w", err)
	}

	return nil
}
