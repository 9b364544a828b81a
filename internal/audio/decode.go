package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/gopxl/beep/mp3"
)

// DecodeFile decodes a file to mono samples based on its extension
func DecodeFile(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		defer f.Close()
		return DecodeWAV(f)
	case ".mp3":
		// The mp3 streamer owns and closes f
		return DecodeMP3(f)
	default:
		f.Close()
		return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// DecodeWAV reads a PCM WAV stream and averages its channels into mono
// samples scaled to [-1, 1].
func DecodeWAV(r io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: invalid wav data", ErrUnsupportedFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("%w: missing wav format", ErrUnsupportedFormat)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	if bitDepth <= 0 {
		return nil, 0, fmt.Errorf("%w: unknown bit depth", ErrUnsupportedFormat)
	}

	// 8-bit PCM is unsigned, wider formats are signed
	scale := float64(int64(1) << (bitDepth - 1))
	offset := 0.0
	if bitDepth == 8 {
		offset = scale
	}

	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += (float64(buf.Data[i*ch+c]) - offset) / scale
		}
		out[i] = sum / float64(ch)
	}

	return out, buf.Format.SampleRate, nil
}

// DecodeMP3 decodes an MP3 stream into mono samples. The reader is closed
// when decoding finishes.
func DecodeMP3(rc io.ReadCloser) ([]float64, int, error) {
	streamer, format, err := mp3.Decode(rc)
	if err != nil {
		rc.Close()
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}
	defer streamer.Close()

	var out []float64
	if n := streamer.Len(); n > 0 {
		out = make([]float64, 0, n)
	}

	chunk := make([][2]float64, 4096)
	for {
		n, ok := streamer.Stream(chunk)
		for _, frame := range chunk[:n] {
			out = append(out, (frame[0]+frame[1])/2)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}

	return out, int(format.SampleRate), nil
}
