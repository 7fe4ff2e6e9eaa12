package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"workflow/internal/config"
	"workflow/internal/constants"
	"workflow/internal/workflow"
)

// Webhook POSTs each notice as JSON to a fixed URL.
type Webhook struct {
	client  *http.Client
	url     string
	headers map[string]string
}

func NewWebhook(cfg config.WebhookChannelConfig, client *http.Client) *Webhook {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = constants.DefaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Webhook{client: client, url: cfg.URL, headers: cfg.Headers}
}

func (w *Webhook) Name() string {
	return constants.ChannelWebhook
}

func (w *Webhook) Send(ctx context.Context, recipient string, msg workflow.Message) error {
	body, err := json.Marshal(newNotice(w.Name(), recipient, msg))
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
