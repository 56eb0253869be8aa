package router

import (
	"net/http"

	"stock-assistant-app/internal/presentation/di"
	"stock-assistant-app/internal/presentation/http/middleware"
)

// NewRouter 创建新的路由器
func NewRouter(container *di.Container) http.Handler {
	mux := http.NewServeMux()

	// OCR 识别接口
	ocrHandler := container.OCRHandler()
	mux.HandleFunc("/api/v1/ocr/recognize", ocrHandler.HandleRecognize)

	// 大盘分析接口
	marketHandler := container.MarketHandler()
	mux.HandleFunc("/api/v1/market/review", marketHandler.HandleReview)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// 中间件
	var h http.Handler = mux
	h = middleware.Recovery(h)
	h = middleware.LoggerWithHealthCheck(h)
	h = middleware.CORS(h)

	return h
}
