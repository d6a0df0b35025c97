// Package transcoder converts uploaded videos into HLS output with ffmpeg.
package transcoder

import (
	"context"
)

// HLSOutput lists the files produced by a single-quality transcode.
type HLSOutput struct {
	// ManifestPath is the generated .m3u8 playlist.
	ManifestPath string
	// SegmentPaths are the generated .ts segments.
	SegmentPaths []string
}

// Variant is one rung of the ABR ladder. Width is derived from Height to
// preserve the source aspect ratio.
type Variant struct {
	Name    string // e.g. "1080p"
	Height  int    // pixels
	Bitrate int    // target bits per second, advertised in the master playlist
}

// VariantOutput lists the files produced for one ladder rung.
type VariantOutput struct {
	Variant      Variant
	ManifestPath string
	SegmentPaths []string
}

// ABROutput is the result of a multi-bitrate transcode: a master playlist
// referencing one variant playlist per rung.
type ABROutput struct {
	MasterManifestPath string
	Variants           []VariantOutput
}

// Transcoder produces streaming-ready output from an uploaded source file.
// All methods expect the output directory to exist and respect context
// cancellation mid-encode.
type Transcoder interface {
	// TranscodeToHLS produces a single-quality HLS rendition of inputPath
	// in outputDir.
	TranscodeToHLS(ctx context.Context, inputPath, outputDir string) (*HLSOutput, error)

	// TranscodeToABR produces one rendition per variant, each in its own
	// subdirectory of outputDir (outputDir/720p/...), plus a master.m3u8
	// tying them together.
	TranscodeToABR(ctx context.Context, inputPath, outputDir string, variants []Variant) (*ABROutput, error)

	// ExtractThumbnail captures a single poster frame from the input video
	// and writes it as a JPEG to outputPath.
	ExtractThumbnail(ctx context.Context, inputPath, outputPath string) error
}
