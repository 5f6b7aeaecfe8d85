// Package output persists assembled audio buffers to disk.
package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/icewall905/audiobooker/internal/audio"
	"github.com/icewall905/audiobooker/internal/encoder"
)

// Static errors for output operations.
var (
	// ErrEmptyBuffer is returned when there is no audio to write.
	ErrEmptyBuffer = errors.New("output: buffer is empty")
	// ErrNameRequired is returned when the output base name is empty.
	ErrNameRequired = errors.New("output: name is required")
)

// File describes one written audio file.
type File struct {
	// Path is the final location of the file.
	Path string
	// Duration is the audio length in seconds.
	Duration float64
}

// Writer writes buffers as WAV files, optionally transcoding them to MP3.
// WAV data goes to a temp file first and is renamed into place, so a
// crash never leaves a half-written chapter behind.
type Writer struct {
	dir    string
	enc    encoder.Encoder
	mp3    bool
	logger *slog.Logger
}

// WriterOption is a function that configures a Writer.
type WriterOption func(*Writer)

// WithEncoder sets the encoder used for MP3 conversion.
func WithEncoder(enc encoder.Encoder) WriterOption {
	return func(w *Writer) {
		w.enc = enc
	}
}

// WithMP3 enables MP3 output. Conversion failures are not fatal: the
// WAV file is kept and returned instead.
func WithMP3(enabled bool) WriterOption {
	return func(w *Writer) {
		w.mp3 = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = logger
	}
}

// NewWriter creates a Writer that writes into dir. The directory is
// created on first write.
func NewWriter(dir string, opts ...WriterOption) *Writer {
	w := &Writer{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write stores buf under name (without extension) and returns the final
// file. With MP3 enabled and a working encoder the result is name.mp3;
// otherwise name.wav.
func (w *Writer) Write(ctx context.Context, name string, buf *audio.Buffer) (File, error) {
	if name == "" {
		return File{}, ErrNameRequired
	}
	if buf == nil || buf.Len() == 0 {
		return File{}, ErrEmptyBuffer
	}

	if err := os.MkdirAll(w.dir, 0750); err != nil {
		return File{}, fmt.Errorf("output: create directory: %w", err)
	}

	wavPath := filepath.Join(w.dir, name+".wav")
	if err := w.writeWAV(wavPath, buf); err != nil {
		return File{}, err
	}

	result := File{Path: wavPath, Duration: buf.Duration()}

	if !w.mp3 {
		return result, nil
	}
	if w.enc == nil || !w.enc.Available() {
		w.logger.Warn("mp3 requested but no encoder available, keeping wav", "file", wavPath)
		return result, nil
	}

	mp3Path := filepath.Join(w.dir, name+".mp3")
	if err := w.enc.Transcode(ctx, wavPath, mp3Path); err != nil {
		w.logger.Warn("mp3 conversion failed, keeping wav", "file", wavPath, "error", err)
		return result, nil
	}

	if err := os.Remove(wavPath); err != nil {
		w.logger.Warn("failed to remove intermediate wav", "file", wavPath, "error", err)
	}

	result.Path = mp3Path
	return result, nil
}

// writeWAV encodes buf to a temp file in the target directory and
// renames it into place.
func (w *Writer) writeWAV(path string, buf *audio.Buffer) error {
	tmp, err := os.CreateTemp(w.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("output: create temp file: %w", err)
	}

	if err := audio.EncodeWAV(tmp, buf.Samples(), buf.SampleRate()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("output: encode wav: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("output: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("output: rename into place: %w", err)
	}
	return nil
}
