// Package models resolves and downloads ggml whisper models keyed by model
// size (tiny, base, small, medium, large variants).
package models

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rmorell/livescribe/internal/config"
)

const defaultBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// sizes lists the supported model size identifiers.
var sizes = map[string]bool{
	"tiny":           true,
	"tiny.en":        true,
	"base":           true,
	"base.en":        true,
	"small":          true,
	"small.en":       true,
	"medium":         true,
	"medium.en":      true,
	"large-v1":       true,
	"large-v2":       true,
	"large-v3":       true,
	"large-v3-turbo": true,
}

// ValidSize reports whether size names a known whisper model.
func ValidSize(size string) bool {
	return sizes[size]
}

// Path returns the local file path for the given model size.
func Path(size string) string {
	return filepath.Join(config.DefaultModelsDir(), "ggml-"+size+".bin")
}

// URL returns the download URL for the given model size.
func URL(size string) string {
	return fmt.Sprintf("%s/ggml-%s.bin", defaultBaseURL, size)
}

// Ensure returns the local path for the model of the given size, downloading
// it first when absent. Download progress is printed to stdout.
func Ensure(size string) (string, error) {
	if !ValidSize(size) {
		return "", fmt.Errorf("models: unknown model size %q", size)
	}

	dest := Path(size)
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		return dest, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("models: creating models dir: %w", err)
	}

	fmt.Printf("Downloading whisper model %q...\n", size)
	if err := fetch(URL(size), dest); err != nil {
		return "", err
	}

	return dest, nil
}

// fetch downloads url to dest, writing to a temp file first and renaming so
// an interrupted download never leaves a truncated model behind.
func fetch(url, dest string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("models: downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("models: download failed: HTTP %d", resp.StatusCode)
	}

	tmpPath := dest + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("models: creating temp file: %w", err)
	}

	pr := &progressWriter{
		writer: f,
		total:  resp.ContentLength,
		label:  filepath.Base(dest),
	}

	written, err := io.Copy(pr, resp.Body)
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("models: writing model file: %w", err)
	}

	fmt.Printf("\nDownloaded %.1f MB\n", float64(written)/(1024*1024))

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("models: moving model file: %w", err)
	}

	return nil
}

// progressWriter wraps an io.Writer and prints download progress.
type progressWriter struct {
	writer  io.Writer
	total   int64
	written int64
	label   string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.written += int64(n)
	if pw.total > 0 {
		pct := float64(pw.written) / float64(pw.total) * 100
		fmt.Printf("\r  %s: %.1f MB / %.1f MB (%.0f%%)",
			pw.label,
			float64(pw.written)/(1024*1024),
			float64(pw.total)/(1024*1024),
			pct)
	} else {
		fmt.Printf("\r  %s: %.1f MB downloaded",
			pw.label,
			float64(pw.written)/(1024*1024))
	}
	return n, err
}
