package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stock-assistant-app/internal/modules/ocr/domain"
)

// ErrNotConfigured OCR 服务未绑定任何视觉提供商
var ErrNotConfigured = errors.New("OCR 服务未配置，请设置 GEMINI_API_KEY 或 ANTHROPIC_API_KEY")

// mimeTypeByExt 文件扩展名到 MIME 类型的映射
var mimeTypeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// StockOCRUseCase 股票截图识别用例
//
// 提供商在构造时一次性注入，进程运行期间不再变更；
// provider 为 nil 表示服务不可用。
type StockOCRUseCase struct {
	provider domain.VisionProvider
}

// NewStockOCRUseCase 创建新的 StockOCRUseCase
func NewStockOCRUseCase(provider domain.VisionProvider) *StockOCRUseCase {
	return &StockOCRUseCase{
		provider: provider,
	}
}

// IsAvailable 检查 OCR 服务是否可用
func (uc *StockOCRUseCase) IsAvailable() bool {
	return uc.provider != nil
}

// Provider 返回当前绑定的提供商标识，未绑定时返回空串
func (uc *StockOCRUseCase) Provider() string {
	if uc.provider == nil {
		return ""
	}
	return uc.provider.Name()
}

// RecognizeBase64 从 Base64 编码的图片中识别股票代码
//
// 单次调用提供商，不做重试；所有失败都以 error 形式返回，
// 不向上层抛出底层故障。
func (uc *StockOCRUseCase) RecognizeBase64(ctx context.Context, imageBase64, mimeType string) ([]string, error) {
	if !uc.IsAvailable() {
		return nil, ErrNotConfigured
	}

	if mimeType == "" {
		mimeType = "image/png"
	}

	imageData, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return nil, fmt.Errorf("图片数据解码失败: %w", err)
	}

	responseText, err := uc.provider.RecognizeStockCodes(ctx, imageData, mimeType)
	if err != nil {
		return nil, fmt.Errorf("识别失败: %w", err)
	}

	return parseResponse(responseText)
}

// RecognizeFile 从图片文件中识别股票代码
//
// MIME 类型按扩展名推断，未知扩展名按 image/png 处理。
func (uc *StockOCRUseCase) RecognizeFile(ctx context.Context, filePath string) ([]string, error) {
	imageData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("文件不存在: %s", filePath)
	}

	mimeType, ok := mimeTypeByExt[strings.ToLower(filepath.Ext(filePath))]
	if !ok {
		mimeType = "image/png"
	}

	imageBase64 := base64.StdEncoding.EncodeToString(imageData)
	return uc.RecognizeBase64(ctx, imageBase64, mimeType)
}
