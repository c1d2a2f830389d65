// Package transcribe converts raw phrase audio into text via whisper.cpp.
// It loads the model once at startup and exposes Transcribe([]byte) returning
// whole text plus time-stamped segments.
package transcribe

import (
	"encoding/binary"
	"fmt"
)

// Segment is one time-stamped span of recognized text, with start and end in
// seconds from the beginning of the phrase audio.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Result is the outcome of one transcription call. Segments are ordered by
// Start and never mutated after return.
type Result struct {
	Text     string
	Segments []Segment
}

// Transcriber converts phrase audio to text.
type Transcriber interface {
	// Transcribe runs the engine on little-endian 16-bit mono 16 kHz PCM.
	Transcribe(pcm []byte) (*Result, error)
	// Close releases engine resources.
	Close() error
}

// Options configures the engine backend.
type Options struct {
	// ModelPath is the ggml model file to load.
	ModelPath string
	// UseGPU requests hardware acceleration. whisper.cpp decides the actual
	// backend at build time; the flag is recorded and logged.
	UseGPU bool
}

// New creates a Transcriber for the given options.
func New(opts Options) (Transcriber, error) {
	if opts.ModelPath == "" {
		return nil, fmt.Errorf("transcribe: model path must not be empty")
	}
	return newWhisperTranscriber(opts)
}

// pcmToFloat32 converts little-endian 16-bit signed PCM bytes to float32
// samples in [-1.0, 1.0]. The 32768.0 divisor matches the input range the
// engine was trained on and must not change.
func pcmToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float32(s) / 32768.0
	}
	return samples
}
