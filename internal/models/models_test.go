package models

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidSize(t *testing.T) {
	for _, size := range []string{"tiny", "base", "small", "medium", "large-v3", "large-v3-turbo", "base.en"} {
		if !ValidSize(size) {
			t.Errorf("ValidSize(%q) = false, want true", size)
		}
	}
	for _, size := range []string{"", "huge", "Base", "large-v4"} {
		if ValidSize(size) {
			t.Errorf("ValidSize(%q) = true, want false", size)
		}
	}
}

func TestPath(t *testing.T) {
	got := Path("base")
	if filepath.Base(got) != "ggml-base.bin" {
		t.Errorf("Path(base) = %q, want base name ggml-base.bin", got)
	}
}

func TestURL(t *testing.T) {
	got := URL("medium")
	want := "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin"
	if got != want {
		t.Errorf("URL(medium) = %q, want %q", got, want)
	}
}

func TestEnsureUnknownSize(t *testing.T) {
	if _, err := Ensure("huge"); err == nil {
		t.Fatal("Ensure with unknown size should return error")
	}
}

func TestFetch(t *testing.T) {
	body := strings.Repeat("x", 2048)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "ggml-test.bin")
	if err := fetch(srv.URL, dest); err != nil {
		t.Fatalf("fetch() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading dest: %v", err)
	}
	if string(got) != body {
		t.Errorf("fetched content length = %d, want %d", len(got), len(body))
	}

	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after successful fetch")
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "ggml-test.bin")
	if err := fetch(srv.URL, dest); err == nil {
		t.Fatal("fetch() on 404 should return error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("dest should not exist after failed fetch")
	}
}

func TestProgressWriter(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	pw := &progressWriter{writer: f, total: 100, label: "test"}

	n, err := pw.Write(make([]byte, 50))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 50 {
		t.Errorf("Write() n = %d, want 50", n)
	}
	if pw.written != 50 {
		t.Errorf("written = %d, want 50", pw.written)
	}
}
