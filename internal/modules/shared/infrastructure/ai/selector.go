package ai

import (
	"context"
	"log/slog"

	"stock-assistant-app/internal/config"
)

// Provider 同时具备图像识别与文本分析能力的 AI 提供商
//
// OCR 与大盘复盘两个模块各自以更窄的消费端接口依赖它。
type Provider interface {
	RecognizeStockCodes(ctx context.Context, imageData []byte, mimeType string) (string, error)
	GenerateReport(ctx context.Context, prompt string) (string, error)
	Name() string
	Close() error
}

// SelectProvider 按优先级绑定 AI 提供商：Gemini 优先，Anthropic 备选
//
// 密钥缺失或为占位符时跳过；构造失败记录警告后继续尝试下一个；
// 全部失败返回 nil，服务进入不可用状态。选择过程不发起网络请求。
func SelectProvider(cfg *config.Config) Provider {
	if config.IsConfigured(cfg.Gemini.APIKey) {
		provider, err := NewGeminiProvider(&cfg.Gemini)
		if err != nil {
			slog.Warn("Gemini Vision 初始化失败", "error", err)
		} else {
			slog.Info("OCR 服务使用 Gemini Vision API", "model", cfg.Gemini.Model)
			return provider
		}
	}

	if config.IsConfigured(cfg.Anthropic.APIKey) {
		slog.Info("OCR 服务使用 Anthropic Vision API", "model", cfg.Anthropic.Model)
		return NewAnthropicProvider(&cfg.Anthropic)
	}

	slog.Warn("未配置可用的 Vision API，OCR 功能将不可用")
	return nil
}
