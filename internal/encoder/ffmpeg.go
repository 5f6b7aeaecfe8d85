// Package encoder converts finished WAV files to MP3 using the ffmpeg CLI.
package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Static errors for encoder operations.
var (
	// ErrFFmpegNotFound is returned when the ffmpeg binary is not on PATH.
	ErrFFmpegNotFound = errors.New("encoder: ffmpeg not found")
	// ErrSourceRequired is returned when the source path is empty.
	ErrSourceRequired = errors.New("encoder: source path is required")
	// ErrDestRequired is returned when the destination path is empty.
	ErrDestRequired = errors.New("encoder: destination path is required")
)

// Encoder defines the interface for audio transcoding.
type Encoder interface {
	// Transcode converts the audio file at src into the format implied
	// by dst's extension.
	Transcode(ctx context.Context, src, dst string) error

	// Available reports whether the encoder can run on this host.
	Available() bool
}

// FFmpeg implements Encoder using the ffmpeg CLI with libmp3lame.
type FFmpeg struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

var _ Encoder = (*FFmpeg)(nil)

// NewFFmpeg creates a new ffmpeg-backed encoder.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpeg(ffmpegPath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpeg{ffmpegPath: ffmpegPath}
}

// Available reports whether the ffmpeg binary can be found.
func (e *FFmpeg) Available() bool {
	_, err := exec.LookPath(e.ffmpegPath)
	return err == nil
}

// Transcode converts src to MP3 at dst. VBR quality 2 keeps speech
// transparent at roughly 190 kbps.
func (e *FFmpeg) Transcode(ctx context.Context, src, dst string) error {
	if src == "" {
		return ErrSourceRequired
	}
	if dst == "" {
		return ErrDestRequired
	}
	if !e.Available() {
		return ErrFFmpegNotFound
	}

	args := []string{
		"-y", // Overwrite output file without asking
		"-i", src,
		"-codec:a", "libmp3lame",
		"-qscale:a", "2",
		dst,
	}

	return e.run(ctx, args)
}

// run executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (e *FFmpeg) run(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("encoder: ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %s\nstderr: %s", e.Err, strings.Join(e.Args, " "), e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
