package transcribe

import (
	"fmt"
	"io"
	"log"
	"strings"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// whisperTranscriber wraps a whisper.cpp model for speech-to-text.
type whisperTranscriber struct {
	model whisper.Model
}

// newWhisperTranscriber loads a whisper model from opts.ModelPath.
// The caller must call Close() when done.
func newWhisperTranscriber(opts Options) (*whisperTranscriber, error) {
	model, err := whisper.New(opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: load whisper model %q: %w", opts.ModelPath, err)
	}
	if opts.UseGPU {
		log.Println("GPU acceleration requested (effective only when whisper.cpp is built with Metal/CUDA)")
	}
	return &whisperTranscriber{model: model}, nil
}

// Close releases the whisper model resources.
func (t *whisperTranscriber) Close() error {
	if t.model != nil {
		return t.model.Close()
	}
	return nil
}

// Transcribe converts phrase audio to text with timed segments. Decoding runs
// at temperature 0 so identical audio always yields identical output, which
// the reconciliation watermark depends on.
func (t *whisperTranscriber) Transcribe(pcm []byte) (*Result, error) {
	ctx, err := t.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("transcribe: create context: %w", err)
	}

	ctx.SetTemperature(0.0)

	samples := pcmToFloat32(pcm)
	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("transcribe: process: %w", err)
	}

	var (
		segments []Segment
		parts    []string
	)
	for {
		seg, err := ctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transcribe: next segment: %w", err)
		}
		segments = append(segments, Segment{
			Start: seg.Start.Seconds(),
			End:   seg.End.Seconds(),
			Text:  seg.Text,
		})
		parts = append(parts, seg.Text)
	}

	return &Result{
		Text:     strings.TrimSpace(strings.Join(parts, " ")),
		Segments: segments,
	}, nil
}
