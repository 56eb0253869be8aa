package handler

import (
	"context"
	"encoding/json"
	"net/http"
)

// ReviewUseCaseInterface 复盘用例接口
type ReviewUseCaseInterface interface {
	Run(ctx context.Context, sendNotification bool) (string, error)
}

// MarketHandler 大盘分析接口的 HTTP 处理器
type MarketHandler struct {
	reviewUseCase ReviewUseCaseInterface
}

// NewMarketHandler 创建新的 MarketHandler
func NewMarketHandler(reviewUseCase ReviewUseCaseInterface) *MarketHandler {
	return &MarketHandler{
		reviewUseCase: reviewUseCase,
	}
}

// MarketReviewResponse 大盘复盘响应
type MarketReviewResponse struct {
	Success bool   `json:"success"`
	Report  string `json:"report,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HandleReview 触发大盘复盘分析
//
// 结果直接返回前端，不走通知推送。
func (h *MarketHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.send(w, http.StatusMethodNotAllowed, MarketReviewResponse{
			Success: false,
			Error:   "Method not allowed",
		})
		return
	}

	report, err := h.reviewUseCase.Run(r.Context(), false)
	if err != nil {
		h.send(w, http.StatusOK, MarketReviewResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.send(w, http.StatusOK, MarketReviewResponse{
		Success: true,
		Report:  report,
	})
}

func (h *MarketHandler) send(w http.ResponseWriter, statusCode int, response MarketReviewResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
