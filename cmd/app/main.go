package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"stock-assistant-app/internal/config"
	"stock-assistant-app/internal/presentation/di"
	"stock-assistant-app/internal/presentation/http/router"
)

// AppConfig 应用启动参数
type AppConfig struct {
	ConfigPath string
	Port       string
}

// ServerInterface 服务器接口（测试替身用）
type ServerInterface interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App 应用结构体
type App struct {
	config     *AppConfig
	container  *di.Container
	server     *http.Server
	serverSeam ServerInterface
}

// NewApp 创建新的 App
func NewApp(appCfg *AppConfig) (*App, error) {
	if appCfg.Port == "" {
		appCfg.Port = "8080"
	}

	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		log.Printf("Failed to load config: %v. Using defaults.", err)
		cfg = config.DefaultConfig()
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DI container: %w", err)
	}

	handler := router.NewRouter(container)

	server := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	app := &App{
		config:    appCfg,
		container: container,
		server:    server,
	}
	app.serverSeam = server

	return app, nil
}

// Start 启动服务器
func (a *App) Start() error {
	a.printStartupMessage()
	return a.serverSeam.ListenAndServe()
}

// printStartupMessage 输出启动信息
func (a *App) printStartupMessage() {
	provider := a.container.OCRUseCase().Provider()
	if provider == "" {
		provider = "未配置"
	}

	fmt.Println("=== Stock Assistant API Server ===")
	fmt.Printf("OCR Provider: %s\n", provider)
	fmt.Printf("Server listening on http://0.0.0.0:%s\n", a.config.Port)
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /health                   - Health check")
	fmt.Println("  POST /api/v1/ocr/recognize     - 识别股票截图中的代码")
	fmt.Println("  POST /api/v1/market/review     - 大盘复盘分析")
	fmt.Println()
}

// Shutdown 关闭服务器并释放资源
func (a *App) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if err := a.serverSeam.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := a.container.Close(); err != nil {
		return fmt.Errorf("container close failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Run 运行应用（带优雅退出）
func (a *App) Run() error {
	serverErr := make(chan error, 1)
	go func() {
		if err := a.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return a.Shutdown(ctx)
	}
}

// realMain 实际主流程，拆出来便于测试
func realMain() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Failed to get home directory: %v. Using current directory.", err)
		homeDir = "."
	}

	configPath := filepath.Join(homeDir, ".stock-assistant", "config.yaml")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	appCfg := &AppConfig{
		ConfigPath: configPath,
		Port:       port,
	}

	app, err := NewApp(appCfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	return app.Run()
}

func main() {
	if err := realMain(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
