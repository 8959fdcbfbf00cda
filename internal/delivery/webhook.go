package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"board/internal/config"
)

// WebhookProvider posts codes to an operator-controlled URL.
type WebhookProvider struct {
	client *http.Client
}

var _ Provider = (*WebhookProvider)(nil)

// NewWebhookProvider creates a webhook provider.
func NewWebhookProvider(client *http.Client) *WebhookProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookProvider{client: client}
}

type webhookRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type webhookResponse struct {
	Success bool `json:"success"`
}

func (p *WebhookProvider) Name() string { return "webhook" }

func (p *WebhookProvider) IsActive(cfg config.DeliveryConfig) bool {
	return cfg.WebhookURL != ""
}

// SendCode posts {email, code} and requires a {"success": true} reply.
func (p *WebhookProvider) SendCode(ctx context.Context, cfg config.DeliveryConfig, email, code string) error {
	payload, err := json.Marshal(webhookRequest{Email: email, Code: code})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("call webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	var out webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode webhook response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("webhook reported failure")
	}
	return nil
}
