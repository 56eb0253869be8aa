package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"stock-assistant-app/internal/config"
)

// GeminiProvider Gemini Vision API 实现
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider 创建新的 GeminiProvider
//
// 客户端构造不发起网络请求，连接在首次调用时建立。
func NewGeminiProvider(cfg *config.GeminiConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  cfg.Model,
	}, nil
}

// RecognizeStockCodes 使用 Gemini Vision 识别截图中的股票代码
func (p *GeminiProvider) RecognizeStockCodes(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     ptr(float32(ocrTemperature)),
		MaxOutputTokens: ptr(int32(ocrMaxTokens)),
	}

	resp, err := model.GenerateContent(ctx,
		genai.Text(ocrPrompt),
		genai.Blob{
			MIMEType: mimeType,
			Data:     imageData,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := extractResponseText(resp)
	if text == "" {
		return "", errors.New("Gemini 返回空响应")
	}

	return text, nil
}

// GenerateReport 使用 Gemini 生成文本分析报告
func (p *GeminiProvider) GenerateReport(ctx context.Context, prompt string) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: ptr(int32(4096)),
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := extractResponseText(resp)
	if text == "" {
		return "", errors.New("Gemini 返回空响应")
	}

	return text, nil
}

// Name 返回提供商标识
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Close 释放底层客户端
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// extractResponseText 拼接响应中所有文本分片
func extractResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text
}

func ptr[T any](v T) *T {
	return &v
}
