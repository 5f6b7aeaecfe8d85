package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icewall905/audiobooker/internal/audio"
)

func wavResponse(t *testing.T, samples []int16, rate int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, audio.EncodeWAV(&buf, samples, rate))
	return buf.Bytes()
}

func TestNewChatterbox_RequiresBaseURL(t *testing.T) {
	_, err := NewChatterbox("")
	assert.ErrorIs(t, err, ErrBaseURLRequired)
}

func TestChatterbox_Narrate(t *testing.T) {
	samples := []int16{100, -200, 300, -400}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tts", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ttsRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)

		assert.Equal(t, "Hello there.", req.Text)
		assert.InDelta(t, 0.7, req.Exaggeration, 1e-9)
		assert.InDelta(t, 0.3, req.CFGWeight, 1e-9)

		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(wavResponse(t, samples, 24000))
	}))
	defer server.Close()

	client, err := NewChatterbox(server.URL, WithStyle(0.7, 0.3))
	require.NoError(t, err)

	clip, err := client.Narrate(context.Background(), "Hello there.")
	require.NoError(t, err)
	assert.Equal(t, samples, clip.Samples)
	assert.Equal(t, 24000, clip.SampleRate)
}

func TestChatterbox_Narrate_EmptyText(t *testing.T) {
	client, err := NewChatterbox("http://localhost:1")
	require.NoError(t, err)

	_, err = client.Narrate(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestChatterbox_Narrate_SendsVoiceRef(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ttsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.VoiceBase64)
		_, _ = w.Write(wavResponse(t, []int16{1}, 24000))
	}))
	defer server.Close()

	client, err := NewChatterbox(server.URL, WithVoiceRef([]byte("voice-sample")))
	require.NoError(t, err)

	_, err = client.Narrate(context.Background(), "hi")
	require.NoError(t, err)
}

func TestChatterbox_Narrate_RetriesServerError(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(wavResponse(t, []int16{42}, 24000))
	}))
	defer server.Close()

	client, err := NewChatterbox(server.URL, WithBaseBackoff(time.Millisecond))
	require.NoError(t, err)

	clip, err := client.Narrate(context.Background(), "retry me")
	require.NoError(t, err)
	assert.Equal(t, []int16{42}, clip.Samples)
	assert.Equal(t, int32(2), calls.Load())
}

func TestChatterbox_Narrate_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewChatterbox(server.URL, WithBaseBackoff(time.Millisecond))
	require.NoError(t, err)

	_, err = client.Narrate(context.Background(), "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestChatterbox_Narrate_MaxRetriesExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewChatterbox(server.URL,
		WithMaxRetries(2),
		WithBaseBackoff(time.Millisecond),
	)
	require.NoError(t, err)

	_, err = client.Narrate(context.Background(), "always failing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)
	assert.Contains(t, err.Error(), "max retries exceeded")
}

func TestChatterbox_Healthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewChatterbox(server.URL)
	require.NoError(t, err)
	assert.NoError(t, client.Healthy(context.Background()))
}

func TestChatterbox_Healthy_Down(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewChatterbox(server.URL)
	require.NoError(t, err)
	assert.ErrorIs(t, client.Healthy(context.Background()), ErrUnhealthy)
}

func TestChatterbox_SampleRate(t *testing.T) {
	client, err := NewChatterbox("http://localhost:1")
	require.NoError(t, err)
	assert.Equal(t, DefaultSampleRate, client.SampleRate())

	client, err = NewChatterbox("http://localhost:1", WithSampleRate(22050))
	require.NoError(t, err)
	assert.Equal(t, 22050, client.SampleRate())
}
