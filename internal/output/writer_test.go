package output

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rmorell/livescribe/internal/transcript"
)

var renderTime = time.Date(2025, 3, 1, 14, 30, 5, 0, time.UTC)

func TestFilenamePattern(t *testing.T) {
	w := NewWriter("/tmp", "meeting", FormatPlain, renderTime)
	if got := filepath.Base(w.Path()); got != "meeting_2025-03-01_14-30-05.txt" {
		t.Errorf("Path() base = %q, want %q", got, "meeting_2025-03-01_14-30-05.txt")
	}

	w = NewWriter("/tmp", "meeting", FormatSubtitle, renderTime)
	if got := filepath.Base(w.Path()); got != "meeting_2025-03-01_14-30-05.srt" {
		t.Errorf("Path() base = %q, want %q", got, "meeting_2025-03-01_14-30-05.srt")
	}

	pattern := regexp.MustCompile(`^meeting_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.srt$`)
	if !pattern.MatchString(filepath.Base(w.Path())) {
		t.Errorf("Path() base %q does not match timestamp pattern", filepath.Base(w.Path()))
	}
}

func TestRenderPlainOverwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "out", FormatPlain, renderTime)
	w.SetConsole(&bytes.Buffer{})

	if err := w.Render([]string{"", "hello"}, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if err := w.Render([]string{"", "hello", "world"}, nil); err != nil {
		t.Fatalf("second Render() error = %v", err)
	}

	got, err := os.ReadFile(w.Path())
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want := "\nhello\nworld\n"
	if string(got) != want {
		t.Errorf("file content = %q, want %q (full rewrite, not append)", got, want)
	}
}

// Two reconciled segments produce exactly two numbered blocks, each followed
// by a blank line.
func TestRenderSubtitleBlocks(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "out", FormatSubtitle, renderTime)
	w.SetConsole(&bytes.Buffer{})

	blocks := []transcript.Block{
		{Index: 1, Start: "0:00:00,000", End: "0:00:02,000", Text: "hello"},
		{Index: 2, Start: "0:00:02,000", End: "0:00:04,000", Text: "world"},
	}
	if err := w.Render([]string{"", "hello", "world"}, blocks); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	got, err := os.ReadFile(w.Path())
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want := "1\n0:00:00,000 --> 0:00:02,000\nhello\n\n" +
		"2\n0:00:02,000 --> 0:00:04,000\nworld\n\n"
	if string(got) != want {
		t.Errorf("file content = %q, want %q", got, want)
	}
}

func TestRenderConsoleRedraw(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "out", FormatPlain, renderTime)

	var console bytes.Buffer
	w.SetConsole(&console)

	if err := w.Render([]string{"one", "two"}, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := console.String()
	if !strings.HasPrefix(out, clearScreen) {
		t.Error("console output should start with the clear-screen sequence")
	}
	if !strings.Contains(out, "one\ntwo\n") {
		t.Errorf("console output = %q, want lines one and two", out)
	}
}

// A failed file write still updates the console and surfaces the error.
func TestRenderPersistFailureNonFatal(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "missing-subdir"), "out", FormatPlain, renderTime)

	var console bytes.Buffer
	w.SetConsole(&console)

	err := w.Render([]string{"hello"}, nil)
	if err == nil {
		t.Fatal("Render() into missing directory should return error")
	}
	if !strings.Contains(console.String(), "hello") {
		t.Error("console should still have been redrawn on persist failure")
	}
}

func TestRenderEmptySubtitles(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "out", FormatSubtitle, renderTime)
	w.SetConsole(&bytes.Buffer{})

	if err := w.Render([]string{""}, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	got, err := os.ReadFile(w.Path())
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("file content = %q, want empty", got)
	}
}
