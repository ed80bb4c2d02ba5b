package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhook_Submit(t *testing.T) {
	var got Job
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-42"})
	}))
	defer srv.Close()

	id, err := NewWebhook(srv.URL).Submit(context.Background(), Job{
		Brief: "Niche: fitness", Topic: "fitness", Kind: "landing",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != "job-42" {
		t.Errorf("Submit() id = %q, want job-42", id)
	}
	if got.Topic != "fitness" || got.Kind != "landing" {
		t.Errorf("posted job = %+v, want topic/kind preserved", got)
	}
}

func TestWebhook_Submit_NoAckBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	id, err := NewWebhook(srv.URL).Submit(context.Background(), Job{Brief: "x"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id == "" {
		t.Error("Submit() id empty, want generated UUID")
	}
}

func TestWebhook_Submit_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewWebhook(srv.URL).Submit(context.Background(), Job{Brief: "x"}); err == nil {
		t.Fatal("Submit() error = nil, want non-nil on 500")
	}
}

func TestNop_Submit(t *testing.T) {
	id, err := Nop{}.Submit(context.Background(), Job{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id == "" {
		t.Error("Nop job ID empty, want generated UUID")
	}
}
