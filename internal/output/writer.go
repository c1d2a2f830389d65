// Package output renders the reconciled transcript to the console and
// persists it to disk in plain-text or SubRip subtitle form. Every cycle
// rewrites the whole file and redraws the whole screen; transcripts are small
// enough that incremental updates are not worth the bookkeeping.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rmorell/livescribe/internal/transcript"
)

// Format selects the persisted transcript representation.
type Format string

const (
	// FormatPlain writes one transcript line per file line.
	FormatPlain Format = "plain"
	// FormatSubtitle writes numbered SubRip blocks.
	FormatSubtitle Format = "subtitle"
)

// clearScreen is the ANSI sequence for a full console redraw.
const clearScreen = "\033[H\033[2J"

// Writer persists the transcript to a timestamped file and mirrors it on the
// console.
type Writer struct {
	format  Format
	path    string
	console io.Writer
}

// NewWriter creates a Writer persisting to dir. The output filename is
// {base}_{YYYY-MM-DD_HH-MM-SS}.txt or .srt, stamped from now.
func NewWriter(dir, base string, format Format, now time.Time) *Writer {
	ext := "txt"
	if format == FormatSubtitle {
		ext = "srt"
	}
	name := fmt.Sprintf("%s_%s.%s", base, now.Format("2006-01-02_15-04-05"), ext)
	return &Writer{
		format:  format,
		path:    filepath.Join(dir, name),
		console: os.Stdout,
	}
}

// SetConsole redirects the live display, primarily for tests.
func (w *Writer) SetConsole(out io.Writer) {
	w.console = out
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}

// Render redraws the console with the current transcript and rewrites the
// output file. The console is always updated; a persistence failure is
// returned afterwards so the caller can warn and keep going.
func (w *Writer) Render(lines []string, blocks []transcript.Block) error {
	fmt.Fprint(w.console, clearScreen)
	for _, line := range lines {
		fmt.Fprintln(w.console, line)
	}

	var data string
	switch w.format {
	case FormatSubtitle:
		data = renderSubtitles(blocks)
	default:
		data = renderPlain(lines)
	}

	if err := os.WriteFile(w.path, []byte(data), 0644); err != nil {
		return fmt.Errorf("output: writing %s: %w", w.path, err)
	}
	return nil
}

// renderPlain serializes the line log, one newline-terminated line per entry.
func renderPlain(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(strings.TrimSpace(line))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderSubtitles serializes SubRip blocks: index line, time range line, text
// line, blank separator.
func renderSubtitles(blocks []transcript.Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", blk.Index, blk.Start, blk.End, blk.Text)
	}
	return b.String()
}
