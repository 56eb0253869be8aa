package handler

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	ocrUsecase "stock-assistant-app/internal/modules/ocr/usecase"
	"stock-assistant-app/internal/modules/shared/infrastructure/database"
)

// cacheTTL 识别结果缓存时长
const cacheTTL = 24 * time.Hour

// OCRHandler 股票截图识别接口的 HTTP 处理器
type OCRHandler struct {
	ocrUseCase  OCRUseCaseInterface
	cacheRepo   CacheRepositoryInterface   // 可为 nil，缓存为可选能力
	historyRepo RecognitionHistoryInterface // 可为 nil，历史记录为可选能力
}

// NewOCRHandler 创建新的 OCRHandler
func NewOCRHandler(
	ocrUseCase OCRUseCaseInterface,
	cacheRepo CacheRepositoryInterface,
	historyRepo RecognitionHistoryInterface,
) *OCRHandler {
	return &OCRHandler{
		ocrUseCase:  ocrUseCase,
		cacheRepo:   cacheRepo,
		historyRepo: historyRepo,
	}
}

// OCRRequest 识别请求
type OCRRequest struct {
	// ImageBase64 Base64 编码的图片数据（不含 data:image/xxx;base64, 前缀）
	ImageBase64 string `json:"image_base64"`
	// MimeType 图片 MIME 类型，缺省为 image/png
	MimeType string `json:"mime_type"`
}

// OCRResponse 识别响应
type OCRResponse struct {
	Success  bool     `json:"success"`
	Codes    []string `json:"codes"`
	Count    int      `json:"count"`
	Provider string   `json:"provider,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// HandleRecognize 识别股票截图中的代码
//
// 业务失败（服务未配置、识别失败、无有效代码）统一返回 200 加
// success=false，与协议错误（非 POST、报文不合法）区分。
func (h *OCRHandler) HandleRecognize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var request OCRRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if request.ImageBase64 == "" {
		h.sendError(w, "image_base64 is required", http.StatusBadRequest)
		return
	}

	if !h.ocrUseCase.IsAvailable() {
		h.sendResult(w, OCRResponse{
			Success: false,
			Codes:   []string{},
			Error:   ocrUsecase.ErrNotConfigured.Error(),
		}, "")
		return
	}

	cacheKey := h.generateCacheKey(request.ImageBase64)

	// Redis 缓存命中时跳过模型调用
	if h.cacheRepo != nil {
		if cached, err := h.cacheRepo.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var codes []string
			if err := json.Unmarshal(cached, &codes); err == nil {
				h.sendResult(w, OCRResponse{
					Success:  true,
					Codes:    codes,
					Count:    len(codes),
					Provider: h.ocrUseCase.Provider(),
				}, "HIT")
				return
			}
		}
	}

	codes, err := h.ocrUseCase.RecognizeBase64(ctx, request.ImageBase64, request.MimeType)
	if err != nil {
		h.sendResult(w, OCRResponse{
			Success:  false,
			Codes:    []string{},
			Provider: h.ocrUseCase.Provider(),
			Error:    err.Error(),
		}, "MISS")
		return
	}

	// 解析成功但没有任何有效代码，按失败对待
	if len(codes) == 0 {
		h.sendResult(w, OCRResponse{
			Success:  false,
			Codes:    []string{},
			Provider: h.ocrUseCase.Provider(),
			Error:    ocrUsecase.ErrNoValidCode.Error(),
		}, "MISS")
		return
	}

	if h.cacheRepo != nil {
		if data, err := json.Marshal(codes); err == nil {
			_ = h.cacheRepo.Set(ctx, cacheKey, data, cacheTTL)
		}
	}

	// 识别历史写库放后台，不阻塞响应
	if h.historyRepo != nil {
		go h.saveRecognitionRecord(context.Background(), codes, request.ImageBase64)
	}

	h.sendResult(w, OCRResponse{
		Success:  true,
		Codes:    codes,
		Count:    len(codes),
		Provider: h.ocrUseCase.Provider(),
	}, "MISS")
}

// sendResult 输出业务响应
func (h *OCRHandler) sendResult(w http.ResponseWriter, response OCRResponse, cacheState string) {
	w.Header().Set("Content-Type", "application/json")
	if cacheState != "" {
		w.Header().Set("X-Cache", cacheState)
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// sendError 输出协议错误响应
func (h *OCRHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(OCRResponse{
		Success: false,
		Codes:   []string{},
		Error:   message,
	})
}

// generateCacheKey 以图片数据哈希生成缓存键
func (h *OCRHandler) generateCacheKey(imageBase64 string) string {
	hash := sha256.Sum256([]byte(imageBase64))
	return fmt.Sprintf("ocr:recognize:%s", hex.EncodeToString(hash[:]))
}

// saveRecognitionRecord 保存识别历史
func (h *OCRHandler) saveRecognitionRecord(ctx context.Context, codes []string, imageBase64 string) {
	hash := sha256.Sum256([]byte(imageBase64))

	record := &database.RecognitionRecord{
		ID:        generateUUID(),
		Provider:  h.ocrUseCase.Provider(),
		Codes:     codes,
		Count:     len(codes),
		ImageHash: hex.EncodeToString(hash[:]),
		CreatedAt: time.Now(),
	}

	if err := h.historyRepo.Create(ctx, record); err != nil {
		slog.Warn("识别历史保存失败", "error", err)
	}
}

// generateUUID 生成 UUID v4
func generateUUID() string {
	b := make([]byte, 16)
	_, _ = io.ReadFull(rand.Reader, b)
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
