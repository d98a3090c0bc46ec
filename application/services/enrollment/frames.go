package enrollment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"invigil.io/infrastructure/logger"
)

var ErrExtractionFailed = errors.New("failed to extract frames from video")

// FrameExtractor turns an enrollment video into jpeg frames.
type FrameExtractor interface {
	Extract(ctx context.Context, video []byte) ([][]byte, error)
}

// FFmpegExtractor samples frames with the ffmpeg binary.
type FFmpegExtractor struct {
	Path      string
	FPS       int
	MaxFrames int
	TempDir   string
}

func NewFFmpegExtractor(path string, fps int, maxFrames int) *FFmpegExtractor {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegExtractor{Path: path, FPS: fps, MaxFrames: maxFrames}
}

func (f *FFmpegExtractor) args(input string, outputPattern string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", input,
		"-vf", "fps=" + strconv.Itoa(f.FPS),
		"-frames:v", strconv.Itoa(f.MaxFrames),
		"-q:v", "2",
		outputPattern,
	}
}

func (f *FFmpegExtractor) Extract(ctx context.Context, video []byte) ([][]byte, error) {
	dir, err := os.MkdirTemp(f.TempDir, "enrollment-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "video.webm")
	if err := os.WriteFile(input, video, 0o600); err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.Path, f.args(input, filepath.Join(dir, "frame_%04d.jpg"))...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		logger.Error("ffmpeg frame extraction failed", logger.LoggerOptions{Key: "stderr", Data: stderr.String()}, logger.LoggerOptions{Key: "error", Data: err})
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return readFrames(dir, f.MaxFrames)
}

// readFrames loads the frame_*.jpg files of dir in name order.
func readFrames(dir string, limit int) ([][]byte, error) {
	names, err := filepath.Glob(filepath.Join(dir, "frame_*.jpg"))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	frames := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		frames = append(frames, data)
	}
	return frames, nil
}
