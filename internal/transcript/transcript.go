// Package transcript merges transcription results into a stable running
// transcript. Because every cycle re-transcribes the whole phrase buffer, a
// watermark over finalized segment end times keeps already-emitted segments
// from being appended again.
package transcript

import (
	"fmt"
	"strings"

	"github.com/rmorell/livescribe/internal/transcribe"
)

// Block is one subtitle entry: a 1-based sequential index, formatted start
// and end timestamps, and the segment text. Blocks are append-only.
type Block struct {
	Index int
	Start string
	End   string
	Text  string
}

// Transcript holds the two reconciled views of the transcription timeline:
// the flat line log and the indexed subtitle blocks. Only the pipeline loop
// mutates it, so it carries no locking.
type Transcript struct {
	lines     []string
	blocks    []Block
	watermark float64
}

// New creates an empty Transcript. The line log starts with a single empty
// line so the "currently active line" always exists.
func New() *Transcript {
	return &Transcript{lines: []string{""}}
}

// Reconcile merges one transcription result into the transcript.
//
// Results without timed segments can only update the line log: the active
// last line is replaced while a phrase continues, or a new line is appended
// when a new phrase started. Results with segments instead go through the
// watermark: each not-yet-finalized segment appends one line and one subtitle
// block. The two paths are intentionally exclusive on segment presence;
// newPhrase has no effect on the segmented path.
func (t *Transcript) Reconcile(res *transcribe.Result, newPhrase bool) {
	if res == nil {
		return
	}

	if len(res.Segments) == 0 {
		text := strings.TrimSpace(res.Text)
		if text == "" {
			return
		}
		if newPhrase {
			t.lines = append(t.lines, text)
		} else {
			t.lines[len(t.lines)-1] = text
		}
		return
	}

	for _, seg := range res.Segments {
		if seg.End <= t.watermark {
			continue
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		t.lines = append(t.lines, text)
		t.blocks = append(t.blocks, Block{
			Index: len(t.blocks) + 1,
			Start: FormatTimestamp(seg.Start),
			End:   FormatTimestamp(seg.End),
			Text:  text,
		})
		if seg.End > t.watermark {
			t.watermark = seg.End
		}
	}
}

// Lines returns a copy of the flat transcript lines.
func (t *Transcript) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Blocks returns a copy of the subtitle blocks.
func (t *Transcript) Blocks() []Block {
	out := make([]Block, len(t.blocks))
	copy(out, t.blocks)
	return out
}

// Watermark returns the end time of the latest finalized segment.
func (t *Transcript) Watermark() float64 {
	return t.watermark
}

// FormatTimestamp renders seconds as an H:MM:SS,000 subtitle timestamp.
// Sub-second precision is discarded; the millisecond field is a literal ,000.
func FormatTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	total := int(sec)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d,000", h, m, s)
}
