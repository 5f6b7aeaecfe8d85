// Package audio provides the in-memory PCM representation used by the
// assembly pipeline: narrated clips, synthetic silence, and the ordered
// buffers they accumulate into before being written out.
package audio

import (
	"errors"
	"fmt"
)

// Static errors for audio operations.
var (
	// ErrEmptyClip is returned when a clip with no samples is appended.
	ErrEmptyClip = errors.New("audio: clip has no samples")
	// ErrSampleRateMismatch is returned when a clip's sample rate differs
	// from the rate the buffer was opened with.
	ErrSampleRateMismatch = errors.New("audio: sample rate mismatch")
)

// Clip is one unit of 16-bit mono PCM audio, either narrated by the TTS
// backend or generated locally as silence. Clips are immutable once created.
type Clip struct {
	// Samples holds signed 16-bit mono PCM samples.
	Samples []int16
	// SampleRate is the number of samples per second.
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Silence creates a clip of zero-valued samples lasting the given number
// of seconds at the given sample rate. Non-positive durations yield an
// empty clip.
func Silence(seconds float64, sampleRate int) Clip {
	n := int(seconds * float64(sampleRate))
	if n < 0 {
		n = 0
	}
	return Clip{
		Samples:    make([]int16, n),
		SampleRate: sampleRate,
	}
}

// Buffer accumulates clips in order at a fixed sample rate. It is the
// single mutable audio structure in the pipeline and is owned exclusively
// by the assembler until flushed.
type Buffer struct {
	sampleRate int
	samples    []int16
	clips      int
}

// NewBuffer creates an empty buffer for the given sample rate.
func NewBuffer(sampleRate int) *Buffer {
	return &Buffer{sampleRate: sampleRate}
}

// Append adds a clip to the end of the buffer. The clip's sample rate must
// match the buffer's; silence clips of length zero are accepted and ignored.
func (b *Buffer) Append(c Clip) error {
	if c.SampleRate != b.sampleRate {
		return fmt.Errorf("%w: buffer %d Hz, clip %d Hz",
			ErrSampleRateMismatch, b.sampleRate, c.SampleRate)
	}
	if len(c.Samples) == 0 {
		return nil
	}
	b.samples = append(b.samples, c.Samples...)
	b.clips++
	return nil
}

// Len returns the total number of samples accumulated.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Clips returns how many non-empty clips have been appended.
func (b *Buffer) Clips() int {
	return b.clips
}

// SampleRate returns the rate the buffer was opened with.
func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

// Samples returns the accumulated PCM data. The returned slice is the
// buffer's backing store; callers must not mutate it.
func (b *Buffer) Samples() []int16 {
	return b.samples
}

// Duration returns the total buffered audio length in seconds.
func (b *Buffer) Duration() float64 {
	if b.sampleRate <= 0 {
		return 0
	}
	return float64(len(b.samples)) / float64(b.sampleRate)
}
