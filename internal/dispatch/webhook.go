package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Webhook posts jobs as JSON to a configured HTTP endpoint. When the endpoint
// acknowledges with a {"job_id": "..."} body that ID is returned; otherwise a
// fresh UUID is generated so the job can still be traced in logs.
type Webhook struct {
	url        string
	httpClient *http.Client
}

var _ Dispatcher = (*Webhook)(nil)

// NewWebhook creates a Webhook dispatcher targeting url.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Submit implements [Dispatcher].
func (w *Webhook) Submit(ctx context.Context, job Job) (string, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("dispatch: marshal job: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("dispatch: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("dispatch: post job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("dispatch: unexpected status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var ack struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil && ack.JobID != "" {
		return ack.JobID, nil
	}
	return uuid.NewString(), nil
}

// Nop is a Dispatcher that accepts every job without doing anything. Used
// when no pipeline endpoint is configured.
type Nop struct{}

var _ Dispatcher = Nop{}

// Submit implements [Dispatcher]. It returns a generated job ID.
func (Nop) Submit(context.Context, Job) (string, error) {
	return uuid.NewString(), nil
}
