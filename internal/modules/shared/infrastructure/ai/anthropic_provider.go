package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stock-assistant-app/internal/config"
)

const defaultAnthropicBaseURL = "https://api.anthropic.com"

// AnthropicProvider Anthropic Claude Vision API 实现
type AnthropicProvider struct {
	apiKey      string
	model       string
	maxTokens   int
	httpClient  *http.Client
	apiEndpoint string // 测试时可替换为 mock 服务地址
}

// anthropicResponse Anthropic messages 接口响应
type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// NewAnthropicProvider 创建新的 AnthropicProvider
//
// base_url 未配置时使用官方地址，配置后可指向代理网关。
func NewAnthropicProvider(cfg *config.AnthropicConfig) *AnthropicProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}

	return &AnthropicProvider{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		apiEndpoint: strings.TrimSuffix(baseURL, "/") + "/v1/messages",
	}
}

// RecognizeStockCodes 使用 Claude Vision 识别截图中的股票代码
//
// 单轮 user 消息：先图片块（base64 + 声明的媒体类型），后文本块（固定提示词）。
func (p *AnthropicProvider) RecognizeStockCodes(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(imageData)

	requestBody := map[string]interface{}{
		"model":       p.model,
		"max_tokens":  ocrMaxTokens,
		"temperature": ocrTemperature,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "image",
						"source": map[string]string{
							"type":       "base64",
							"media_type": mimeType,
							"data":       imageBase64,
						},
					},
					{
						"type": "text",
						"text": ocrPrompt,
					},
				},
			},
		},
	}

	response, err := p.post(ctx, requestBody)
	if err != nil {
		return "", err
	}

	if len(response.Content) == 0 {
		return "", errors.New("Anthropic 返回空响应")
	}

	var text string
	for _, block := range response.Content {
		text += block.Text
	}
	if text == "" {
		return "", errors.New("Anthropic 返回空文本")
	}

	return text, nil
}

// GenerateReport 使用 Claude 生成文本分析报告
func (p *AnthropicProvider) GenerateReport(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model":      p.model,
		"max_tokens": p.maxTokens,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]string{
					{"type": "text", "text": prompt},
				},
			},
		},
	}

	response, err := p.post(ctx, requestBody)
	if err != nil {
		return "", err
	}

	if len(response.Content) == 0 {
		return "", errors.New("Anthropic 返回空响应")
	}

	var text string
	for _, block := range response.Content {
		text += block.Text
	}
	if text == "" {
		return "", errors.New("Anthropic 返回空文本")
	}

	return text, nil
}

// Name 返回提供商标识
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Close 无持久连接需要释放
func (p *AnthropicProvider) Close() error {
	return nil
}

// post 发送 messages 请求并解码响应
func (p *AnthropicProvider) post(ctx context.Context, requestBody map[string]interface{}) (*anthropicResponse, error) {
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response, nil
}
