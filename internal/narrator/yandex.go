package narrator

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"

	tts "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/tts/v3"

	"github.com/icewall905/audiobooker/internal/audio"
)

// yandexEndpoint is the public SpeechKit v3 synthesis endpoint.
const yandexEndpoint = "tts.api.cloud.yandex.net:443"

// yandexSampleRate is the rate of WAV audio returned by SpeechKit.
const yandexSampleRate = 22050

// ErrYandexCredentials is returned when the API key or folder ID is missing.
var ErrYandexCredentials = errors.New("narrator: yandex API key and folder ID are required")

// YandexConfig holds credentials and voice settings for SpeechKit.
type YandexConfig struct {
	APIKey   string
	FolderID string
	Voice    string
	Speed    float64
}

// Yandex narrates text through Yandex SpeechKit v3 over gRPC.
type Yandex struct {
	client   tts.SynthesizerClient
	conn     *grpc.ClientConn
	apiKey   string
	folderID string
	voice    string
	speed    float64
}

var _ Narrator = (*Yandex)(nil)

// NewYandex creates a SpeechKit client. Close must be called when done.
func NewYandex(cfg YandexConfig) (*Yandex, error) {
	if cfg.APIKey == "" || cfg.FolderID == "" {
		return nil, ErrYandexCredentials
	}
	if cfg.Voice == "" {
		cfg.Voice = "marina"
	}
	if cfg.Speed == 0 {
		cfg.Speed = 1.0
	}

	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})

	conn, err := grpc.NewClient(yandexEndpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("narrator: connect to speechkit: %w", err)
	}

	return &Yandex{
		client:   tts.NewSynthesizerClient(conn),
		conn:     conn,
		apiKey:   cfg.APIKey,
		folderID: cfg.FolderID,
		voice:    cfg.Voice,
		speed:    cfg.Speed,
	}, nil
}

// SampleRate reports the rate of the clips this narrator produces.
func (y *Yandex) SampleRate() int {
	return yandexSampleRate
}

// Narrate synthesizes one chunk of text. The response stream is collected
// into a complete WAV container before decoding.
func (y *Yandex) Narrate(ctx context.Context, text string) (audio.Clip, error) {
	if text == "" {
		return audio.Clip{}, ErrEmptyText
	}

	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Api-Key "+y.apiKey)
	ctx = metadata.AppendToOutgoingContext(ctx, "x-folder-id", y.folderID)

	stream, err := y.client.UtteranceSynthesis(ctx, y.buildRequest(text))
	if err != nil {
		return audio.Clip{}, fmt.Errorf("narrator: start synthesis: %w", err)
	}

	var buf bytes.Buffer
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return audio.Clip{}, fmt.Errorf("narrator: receive audio: %w", err)
		}
		if chunk := resp.GetAudioChunk(); chunk != nil {
			buf.Write(chunk.GetData())
		}
	}

	clip, err := audio.DecodeWAV(&buf)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("narrator: decode response: %w", err)
	}

	return clip, nil
}

func (y *Yandex) buildRequest(text string) *tts.UtteranceSynthesisRequest {
	req := &tts.UtteranceSynthesisRequest{}
	req.SetModel("general")
	req.SetText(text)

	voiceHint := &tts.Hints{}
	voiceHint.SetVoice(y.voice)

	speedHint := &tts.Hints{}
	speedHint.SetSpeed(y.speed)

	req.SetHints([]*tts.Hints{voiceHint, speedHint})

	containerAudio := &tts.ContainerAudio{}
	containerAudio.SetContainerAudioType(tts.ContainerAudio_WAV)

	audioSpec := &tts.AudioFormatOptions{}
	audioSpec.SetContainerAudio(containerAudio)
	req.SetOutputAudioSpec(audioSpec)

	req.SetLoudnessNormalizationType(tts.UtteranceSynthesisRequest_LUFS)

	return req
}

// Close releases the underlying gRPC connection.
func (y *Yandex) Close() error {
	return y.conn.Close()
}
