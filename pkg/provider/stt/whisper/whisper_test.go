package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/executiveusa/synthia/pkg/audio"
	"github.com/executiveusa/synthia/pkg/provider/stt"
)

// newTestServer returns a fake transcription endpoint that replies with text
// and records the last request for inspection.
func newTestServer(t *testing.T, text string) (*httptest.Server, *http.Request) {
	t.Helper()
	var last http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = *r
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": text})
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestTranscribe(t *testing.T) {
	srv, _ := newTestServer(t, "  hello from the phone  ")

	p, err := New("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wav := audio.WrapWAV(make([]int16, 16000), 16000, 1)
	got, err := p.Transcribe(context.Background(), wav, "en")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if want := "hello from the phone"; got != want {
		t.Fatalf("Transcribe = %q, want %q (trimmed)", got, want)
	}
}

func TestTranscribe_Empty(t *testing.T) {
	srv, _ := newTestServer(t, "   ")

	p, err := New("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wav := audio.WrapWAV(make([]int16, 1600), 16000, 1)
	_, err = p.Transcribe(context.Background(), wav, "")
	if !errors.Is(err, stt.ErrEmptyTranscription) {
		t.Fatalf("error = %v, want ErrEmptyTranscription", err)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
