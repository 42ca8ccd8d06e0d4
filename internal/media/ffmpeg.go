package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Tool probes media duration and extracts clips. The transcription pipeline
// is its only consumer.
type Tool interface {
	// Probe returns the media duration in whole seconds (floored).
	Probe(ctx context.Context, path string) (int, error)
	// Extract writes the [startSeconds, startSeconds+lengthSeconds) window
	// of src to dst using stream copy.
	Extract(ctx context.Context, src, dst string, startSeconds, lengthSeconds int) error
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// FFmpegTool shells out to ffprobe and ffmpeg.
type FFmpegTool struct {
	ffmpegPath  string
	ffprobePath string
	runner      commandRunner
}

func NewFFmpegTool() *FFmpegTool {
	return &FFmpegTool{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      &execRunner{},
	}
}

func (t *FFmpegTool) Probe(ctx context.Context, path string) (int, error) {
	args := buildProbeArgs(path)

	result, err := t.runner.Run(ctx, t.ffprobePath, args...)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s (exit=%d): %w", path, result.ExitCode, err)
	}

	duration, err := parseProbeDuration(result.Stdout)
	if err != nil {
		return 0, fmt.Errorf("ffprobe output for %s: %w", path, err)
	}
	return duration, nil
}

func (t *FFmpegTool) Extract(ctx context.Context, src, dst string, startSeconds, lengthSeconds int) error {
	args := buildExtractArgs(src, dst, startSeconds, lengthSeconds)

	result, err := t.runner.Run(ctx, t.ffmpegPath, args...)
	if err != nil {
		return fmt.Errorf("ffmpeg extract failed for %s at %ds (exit=%d): %w", src, startSeconds, result.ExitCode, err)
	}
	return nil
}

// buildProbeArgs asks ffprobe for the container duration only.
func buildProbeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

// buildExtractArgs builds a stream-copy window extraction. No re-encode, so
// extraction is cheap enough to fan out per chunk.
func buildExtractArgs(src, dst string, startSeconds, lengthSeconds int) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-ss", strconv.Itoa(startSeconds),
		"-t", strconv.Itoa(lengthSeconds),
		"-i", src,
		"-c", "copy",
		dst,
	}
}

// parseProbeDuration floors ffprobe's fractional seconds to whole seconds.
func parseProbeDuration(out string) (int, error) {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return 0, fmt.Errorf("empty duration")
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable duration %q: %w", trimmed, err)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative duration %q", trimmed)
	}
	return int(f), nil
}

// NewToolForTests constructs an FFmpegTool with an injected runner.
func NewToolForTests(ffmpegPath, ffprobePath string, runner commandRunner) *FFmpegTool {
	return &FFmpegTool{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		runner:      runner,
	}
}
