package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stock-assistant-app/internal/config"
)

// WebhookNotifier 通过 Webhook 推送通知
type WebhookNotifier struct {
	httpClient *http.Client
	webhookURL string
}

// NewWebhookNotifier 创建新的 WebhookNotifier，未配置地址时返回 nil
func NewWebhookNotifier(cfg *config.NotifyConfig) *WebhookNotifier {
	if cfg.WebhookURL == "" {
		return nil
	}

	return &WebhookNotifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		webhookURL: cfg.WebhookURL,
	}
}

// Push 推送一条通知
func (n *WebhookNotifier) Push(ctx context.Context, title, content string) error {
	payload := map[string]string{
		"title":   title,
		"content": content,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
