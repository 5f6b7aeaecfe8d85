package narrator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/icewall905/audiobooker/internal/audio"
)

// Static errors for the Chatterbox client.
var (
	// ErrBaseURLRequired is returned when the server URL is not provided.
	ErrBaseURLRequired = errors.New("narrator: chatterbox base URL is required")
	// ErrUnhealthy is returned when the health endpoint does not answer OK.
	ErrUnhealthy = errors.New("narrator: chatterbox server is not healthy")
)

// Chatterbox narrates text through a Chatterbox TTS server over HTTP.
// The server returns 24 kHz 16-bit mono WAV audio.
type Chatterbox struct {
	baseURL      string
	httpClient   *http.Client
	maxRetries   int
	baseBackoff  time.Duration
	sampleRate   int
	exaggeration float64
	cfgWeight    float64
	voiceRefB64  string
}

var _ Narrator = (*Chatterbox)(nil)

// ChatterboxOption is a function that configures a Chatterbox client.
type ChatterboxOption func(*Chatterbox)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ChatterboxOption {
	return func(cb *Chatterbox) {
		cb.httpClient = c
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) ChatterboxOption {
	return func(cb *Chatterbox) {
		cb.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ChatterboxOption {
	return func(cb *Chatterbox) {
		cb.baseBackoff = d
	}
}

// WithStyle sets the expressiveness controls passed to the model.
// Both default to 0.5 when unset.
func WithStyle(exaggeration, cfgWeight float64) ChatterboxOption {
	return func(cb *Chatterbox) {
		cb.exaggeration = exaggeration
		cb.cfgWeight = cfgWeight
	}
}

// WithVoiceRef sets the reference voice sample for cloning. The sample
// must be 16-bit mono WAV; see audio.LoadVoiceRef.
func WithVoiceRef(wav []byte) ChatterboxOption {
	return func(cb *Chatterbox) {
		cb.voiceRefB64 = base64.StdEncoding.EncodeToString(wav)
	}
}

// WithSampleRate overrides the expected output sample rate.
func WithSampleRate(rate int) ChatterboxOption {
	return func(cb *Chatterbox) {
		cb.sampleRate = rate
	}
}

// NewChatterbox creates a client for a Chatterbox TTS server.
// Narration requests can take a long time on CPU, so the default HTTP
// client carries a generous timeout.
func NewChatterbox(baseURL string, opts ...ChatterboxOption) (*Chatterbox, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	c := &Chatterbox{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		maxRetries:   3,
		baseBackoff:  1 * time.Second,
		sampleRate:   DefaultSampleRate,
		exaggeration: 0.5,
		cfgWeight:    0.5,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SampleRate reports the rate of the clips this narrator produces.
func (c *Chatterbox) SampleRate() int {
	return c.sampleRate
}

type ttsRequest struct {
	Text         string  `json:"text"`
	Exaggeration float64 `json:"exaggeration"`
	CFGWeight    float64 `json:"cfg_weight"`
	VoiceBase64  string  `json:"voice_base64,omitempty"`
}

// Narrate synthesizes one chunk of text and returns the decoded clip.
func (c *Chatterbox) Narrate(ctx context.Context, text string) (audio.Clip, error) {
	if text == "" {
		return audio.Clip{}, ErrEmptyText
	}

	reqBody := ttsRequest{
		Text:         text,
		Exaggeration: c.exaggeration,
		CFGWeight:    c.cfgWeight,
		VoiceBase64:  c.voiceRefB64,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("narrator: marshal request: %w", err)
	}

	wav, err := c.doRequestWithRetry(ctx, c.baseURL+"/tts", bodyBytes)
	if err != nil {
		return audio.Clip{}, err
	}

	clip, err := audio.DecodeWAV(bytes.NewReader(wav))
	if err != nil {
		return audio.Clip{}, fmt.Errorf("narrator: decode response: %w", err)
	}

	return clip, nil
}

// Healthy checks the server's health endpoint.
func (c *Chatterbox) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("narrator: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// doRequestWithRetry performs an HTTP request with exponential backoff retry.
func (c *Chatterbox) doRequestWithRetry(ctx context.Context, url string, body []byte) ([]byte, error) {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("narrator: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		respBody, err := c.doRequest(ctx, url, body)
		if err == nil {
			return respBody, nil
		}

		if !isRetryable(err) {
			return nil, err
		}

		lastErr = err
	}

	return nil, fmt.Errorf("narrator: max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request and returns the raw response body.
func (c *Chatterbox) doRequest(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("narrator: create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("narrator: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("narrator: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return nil, &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))}
		}
		return nil, fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
