package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// WebhookSink POSTs the run payload as JSON to every recipient URL.
type WebhookSink struct {
	client *http.Client
}

var _ ports.NotificationSink = (*WebhookSink)(nil)

// NewWebhookSink creates a WebhookSink. A nil client uses a 10s timeout.
func NewWebhookSink(client *http.Client) *WebhookSink {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookSink{client: client}
}

// Name returns "webhooks".
func (s *WebhookSink) Name() string {
	return "webhooks"
}

// Send delivers to every URL; failures of single URLs are joined.
func (s *WebhookSink) Send(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(NewPayload(n))
	if err != nil {
		return domain.Classify(domain.ErrNotify, zerr.Wrap(err, "failed to encode webhook payload"))
	}

	var errs []error
	for _, url := range n.Recipients {
		if err := s.post(ctx, url, body); err != nil {
			errs = append(errs, zerr.With(err, "url", url))
		}
	}
	if len(errs) > 0 {
		return domain.Classify(domain.ErrNotify, errors.Join(errs...))
	}
	return nil
}

func (s *WebhookSink) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return zerr.Wrap(err, "invalid webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ferry")

	resp, err := s.client.Do(req)
	if err != nil {
		return zerr.Wrap(err, "webhook request failed")
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zerr.With(zerr.New("webhook rejected notification"), "status", resp.StatusCode)
	}
	return nil
}
