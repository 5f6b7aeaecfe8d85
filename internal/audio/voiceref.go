package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	mp3lib "github.com/hajimehoshi/go-mp3"
)

// ErrUnsupportedVoiceRef is returned for voice reference files whose
// extension is neither .wav nor .mp3.
var ErrUnsupportedVoiceRef = errors.New("audio: unsupported voice reference format")

// LoadVoiceRef reads a voice reference sample from disk and normalizes it
// to 16-bit mono WAV bytes, the only format the narrator backends accept.
// WAV input is decoded and re-encoded (downmixing if needed); MP3 input is
// decoded with go-mp3 first.
func LoadVoiceRef(path string) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 - path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("open voice reference: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		clip, err := DecodeWAV(f)
		if err != nil {
			return nil, fmt.Errorf("decode voice reference: %w", err)
		}
		return encodeClip(clip)
	case ".mp3":
		clip, err := DecodeMP3(f)
		if err != nil {
			return nil, fmt.Errorf("decode voice reference: %w", err)
		}
		return encodeClip(clip)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVoiceRef, filepath.Ext(path))
	}
}

// DecodeMP3 decodes an MP3 stream into a mono clip. go-mp3 always emits
// 16-bit stereo PCM at the source sample rate, so the two channels are
// averaged down to one.
func DecodeMP3(r io.Reader) (Clip, error) {
	dec, err := mp3lib.NewDecoder(r)
	if err != nil {
		return Clip{}, fmt.Errorf("mp3 decoder: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return Clip{}, fmt.Errorf("mp3 decode: %w", err)
	}

	return decodePCM16(raw, dec.SampleRate(), 2), nil
}

func encodeClip(c Clip) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeWAV(&buf, c.Samples, c.SampleRate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
