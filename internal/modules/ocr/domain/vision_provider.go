package domain

import "context"

// VisionProvider 视觉识别提供商接口
//
// 一次进程生命周期内绑定一个实现，由依赖注入层在启动时选定。
type VisionProvider interface {
	// RecognizeStockCodes 识别截图中的股票代码，返回模型的原始文本响应
	RecognizeStockCodes(ctx context.Context, imageData []byte, mimeType string) (string, error)

	// Name 返回提供商标识（gemini/anthropic）
	Name() string
}
