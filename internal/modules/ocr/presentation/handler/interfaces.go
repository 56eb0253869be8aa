package handler

import (
	"context"
	"time"

	"stock-assistant-app/internal/modules/shared/infrastructure/database"
)

// OCRUseCaseInterface 识别用例接口
type OCRUseCaseInterface interface {
	IsAvailable() bool
	Provider() string
	RecognizeBase64(ctx context.Context, imageBase64, mimeType string) ([]string, error)
}

// CacheRepositoryInterface 缓存仓储接口
type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// RecognitionHistoryInterface 识别历史仓储接口
type RecognitionHistoryInterface interface {
	Create(ctx context.Context, record *database.RecognitionRecord) error
}
