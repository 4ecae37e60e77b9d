package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg runs the ffmpeg and ffprobe binaries found on PATH unless a path is set.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
}

func (f FFmpeg) Probe(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ffprobe(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w: %s", err, lastLine(stderr.String()))
	}
	return parseDuration(string(out))
}

func (f FFmpeg) Render(ctx context.Context, src, dst string, t Transform) error {
	cmd := exec.CommandContext(ctx, f.ffmpeg(), renderArgs(src, dst, t)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

func renderArgs(src, dst string, t Transform) []string {
	return []string{
		"-y",
		"-ss", strconv.FormatFloat(t.StartOffset.Seconds(), 'f', -1, 64),
		"-i", src,
		"-frames:v", "1",
		"-vf", t.filter(),
		dst,
	}
}

// filter builds the ffmpeg video filter. "thumb" fills the box and crops the
// overflow around the centre, anything else scales to the exact size.
func (t Transform) filter() string {
	if t.Crop == "thumb" || t.Crop == "fill" {
		return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
			t.Width, t.Height, t.Width, t.Height)
	}
	return fmt.Sprintf("scale=%d:%d", t.Width, t.Height)
}

func parseDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	if s == "" || s == "N/A" {
		return 0, nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected duration %q", s)
	}
	return d, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (f FFmpeg) ffmpeg() string {
	if f.FFmpegPath != "" {
		return f.FFmpegPath
	}
	return "ffmpeg"
}

func (f FFmpeg) ffprobe() string {
	if f.FFprobePath != "" {
		return f.FFprobePath
	}
	return "ffprobe"
}
