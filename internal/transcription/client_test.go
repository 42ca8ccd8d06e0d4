package transcription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	apperrors "classroom-api/pkg/errors"
)

func writeClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk-000.mp3")
	if err := os.WriteFile(path, []byte("clip-bytes"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	return path
}

func TestClientTranscribe(t *testing.T) {
	clip := writeClip(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe/speech-to-text" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "scribe-mini" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("language"); got != "ur" {
			t.Errorf("language = %q", got)
		}
		if _, header, err := r.FormFile("file"); err != nil {
			t.Errorf("file part missing: %v", err)
		} else if header.Filename != "chunk-000.mp3" {
			t.Errorf("filename = %q", header.Filename)
		}

		json.NewEncoder(w).Encode(map[string]string{"transcript": "hello class"})
	}))
	defer srv.Close()

	c := NewClientForTests(srv.URL, srv.Client())

	text, err := c.Transcribe(context.Background(), clip)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello class" {
		t.Fatalf("transcript = %q", text)
	}
}

func TestClientTranscribeNon200(t *testing.T) {
	clip := writeClip(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over capacity", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClientForTests(srv.URL, srv.Client())

	_, err := c.Transcribe(context.Background(), clip)
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("error type = %T, want *AppError", err)
	}
	if appErr.Code != apperrors.ErrExternalService.Code {
		t.Fatalf("error code = %q", appErr.Code)
	}
}

func TestClientTranscribeMissingTranscript(t *testing.T) {
	clip := writeClip(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer srv.Close()

	c := NewClientForTests(srv.URL, srv.Client())

	if _, err := c.Transcribe(context.Background(), clip); err == nil {
		t.Fatal("expected error when transcript field is absent")
	}
}

func TestClientTranscribeMissingFile(t *testing.T) {
	c := NewClientForTests("http://localhost:0", http.DefaultClient)

	if _, err := c.Transcribe(context.Background(), "/does/not/exist.mp3"); err == nil {
		t.Fatal("expected error for missing clip")
	}
}
