// Package narrator converts text into speech through an external
// text-to-speech service. Adapters exist for a Chatterbox HTTP server
// and for Yandex SpeechKit; both return raw PCM clips ready for
// assembly.
package narrator

import (
	"context"
	"errors"

	"github.com/icewall905/audiobooker/internal/audio"
)

// DefaultSampleRate is the output rate of the Chatterbox model.
const DefaultSampleRate = 24000

// Static errors shared by narrator adapters.
var (
	// ErrEmptyText is returned when there is nothing to narrate.
	ErrEmptyText = errors.New("narrator: text is empty")
	// ErrServerError is returned when the service responds with a 5xx status.
	ErrServerError = errors.New("narrator: server error")
	// ErrRateLimited is returned when the service responds with a 429 status.
	ErrRateLimited = errors.New("narrator: rate limited")
	// ErrRequestFailed is returned when the request fails with any other non-2xx status.
	ErrRequestFailed = errors.New("narrator: request failed")
)

// Narrator defines the interface for speech synthesis.
type Narrator interface {
	// Narrate synthesizes speech for a single chunk of text.
	Narrate(ctx context.Context, text string) (audio.Clip, error)

	// SampleRate reports the rate of the clips this narrator produces.
	// It is known before the first call to Narrate, so callers can
	// generate silence that will mix with narrated audio.
	SampleRate() int
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
