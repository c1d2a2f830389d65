// Package pipeline drives the capture-to-transcript loop: drain queued audio,
// advance the phrase segmenter, transcribe the accumulated phrase, reconcile
// the result, render. Cycles run strictly in sequence on one goroutine.
package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/rmorell/livescribe/internal/output"
	"github.com/rmorell/livescribe/internal/phrase"
	"github.com/rmorell/livescribe/internal/transcribe"
	"github.com/rmorell/livescribe/internal/transcript"
)

// defaultPollInterval is how long the loop sleeps when no audio is queued.
const defaultPollInterval = 250 * time.Millisecond

// Drainer supplies buffered capture audio. *audio.Queue satisfies it.
type Drainer interface {
	Drain() []byte
}

// Pipeline owns one transcription run: all phrase and transcript state is
// mutated only from Run's goroutine.
type Pipeline struct {
	queue        Drainer
	segmenter    *phrase.Segmenter
	transcriber  transcribe.Transcriber
	transcript   *transcript.Transcript
	writer       *output.Writer
	pollInterval time.Duration
	now          func() time.Time
}

// New wires a Pipeline from its collaborators.
func New(queue Drainer, seg *phrase.Segmenter, tr transcribe.Transcriber, ts *transcript.Transcript, w *output.Writer) *Pipeline {
	return &Pipeline{
		queue:        queue,
		segmenter:    seg,
		transcriber:  tr,
		transcript:   ts,
		writer:       w,
		pollInterval: defaultPollInterval,
		now:          time.Now,
	}
}

// Transcript returns the transcript this pipeline reconciles into.
func (p *Pipeline) Transcript() *transcript.Transcript {
	return p.transcript
}

// Run executes the pipeline loop until ctx is canceled, then performs one
// final render and returns nil. Per-cycle transcription and persistence
// failures are logged and skipped; they never stop the loop.
func (p *Pipeline) Run(ctx context.Context) error {
	timer := time.NewTimer(p.pollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.render()
			return nil
		default:
		}

		if p.cycle() {
			continue
		}

		// Nothing queued: wait out the poll interval or shut down.
		timer.Reset(p.pollInterval)
		select {
		case <-ctx.Done():
			p.render()
			return nil
		case <-timer.C:
		}
	}
}

// cycle runs one drain-transcribe-reconcile-render pass. It reports false
// when no audio was available.
func (p *Pipeline) cycle() bool {
	chunk := p.queue.Drain()
	if len(chunk) == 0 {
		return false
	}

	phraseAudio, newPhrase := p.segmenter.Advance(p.now(), chunk)

	res, err := p.transcriber.Transcribe(phraseAudio)
	if err != nil {
		// The cycle's transcription is absent but the display and the
		// output file still refresh from the unchanged transcript.
		log.Printf("WARN: transcription failed: %v", err)
		p.render()
		return true
	}

	p.transcript.Reconcile(res, newPhrase)
	p.render()
	return true
}

// render redraws the display and persists the transcript, downgrading
// persistence failures to a warning.
func (p *Pipeline) render() {
	if err := p.writer.Render(p.transcript.Lines(), p.transcript.Blocks()); err != nil {
		log.Printf("WARN: %v", err)
	}
}
