package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// WAV container constants for the 16-bit mono PCM files this service
// produces and consumes.
const (
	wavHeaderSize    = 44
	wavFormatPCM     = 1
	wavBitsPerSample = 16
)

// Static errors for WAV parsing.
var (
	// ErrNotWAV is returned when the input does not start with a RIFF/WAVE header.
	ErrNotWAV = errors.New("audio: not a RIFF/WAVE file")
	// ErrUnsupportedWAV is returned for WAV files that are not 16-bit PCM.
	ErrUnsupportedWAV = errors.New("audio: unsupported WAV encoding")
	// ErrNoDataChunk is returned when the WAV file has no data chunk.
	ErrNoDataChunk = errors.New("audio: WAV file has no data chunk")
)

// EncodeWAV writes samples as a 16-bit mono PCM WAV stream.
func EncodeWAV(w io.Writer, samples []int16, sampleRate int) error {
	dataLen := len(samples) * 2
	byteRate := sampleRate * 2

	// Writes to a bytes.Buffer cannot fail.
	var header bytes.Buffer
	header.WriteString("RIFF")
	_ = binary.Write(&header, binary.LittleEndian, uint32(36+dataLen))
	header.WriteString("WAVE")
	header.WriteString("fmt ")
	_ = binary.Write(&header, binary.LittleEndian, uint32(16))
	_ = binary.Write(&header, binary.LittleEndian, uint16(wavFormatPCM))
	_ = binary.Write(&header, binary.LittleEndian, uint16(1))
	_ = binary.Write(&header, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&header, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&header, binary.LittleEndian, uint16(2))
	_ = binary.Write(&header, binary.LittleEndian, uint16(wavBitsPerSample))
	header.WriteString("data")
	_ = binary.Write(&header, binary.LittleEndian, uint32(dataLen))

	if _, err := w.Write(header.Bytes()); err != nil {
		return fmt.Errorf("write WAV header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("write WAV samples: %w", err)
	}
	return nil
}

// DecodeWAV parses a 16-bit PCM WAV stream into a mono clip. Multi-channel
// input is downmixed by averaging the channels.
func DecodeWAV(r io.Reader) (Clip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Clip{}, fmt.Errorf("read WAV: %w", err)
	}
	if len(data) < wavHeaderSize ||
		string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Clip{}, ErrNotWAV
	}

	var (
		sampleRate int
		channels   int
		haveFmt    bool
	)

	// Walk the chunk list; fmt must precede data.
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return Clip{}, ErrUnsupportedWAV
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			if format != wavFormatPCM || bits != wavBitsPerSample || channels < 1 {
				return Clip{}, fmt.Errorf("%w: format=%d bits=%d channels=%d",
					ErrUnsupportedWAV, format, bits, channels)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return Clip{}, ErrUnsupportedWAV
			}
			return decodePCM16(data[body:body+size], sampleRate, channels), nil
		}

		// Chunks are word-aligned.
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}

	return Clip{}, ErrNoDataChunk
}

// decodePCM16 converts interleaved 16-bit PCM bytes to a mono clip.
func decodePCM16(raw []byte, sampleRate, channels int) Clip {
	frames := len(raw) / (2 * channels)
	samples := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			sum += int(int16(binary.LittleEndian.Uint16(raw[off : off+2])))
		}
		samples[i] = int16(sum / channels)
	}
	return Clip{Samples: samples, SampleRate: sampleRate}
}
