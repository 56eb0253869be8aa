package di

import (
	"log/slog"

	"stock-assistant-app/internal/config"
	marketDomain "stock-assistant-app/internal/modules/market/domain"
	marketHandler "stock-assistant-app/internal/modules/market/presentation/handler"
	marketUsecase "stock-assistant-app/internal/modules/market/usecase"
	ocrDomain "stock-assistant-app/internal/modules/ocr/domain"
	ocrHandler "stock-assistant-app/internal/modules/ocr/presentation/handler"
	ocrUsecase "stock-assistant-app/internal/modules/ocr/usecase"
	"stock-assistant-app/internal/modules/shared/infrastructure/ai"
	"stock-assistant-app/internal/modules/shared/infrastructure/cache"
	"stock-assistant-app/internal/modules/shared/infrastructure/database"
	"stock-assistant-app/internal/modules/shared/infrastructure/marketdata"
	"stock-assistant-app/internal/modules/shared/infrastructure/notify"
	"stock-assistant-app/internal/modules/shared/infrastructure/search"
)

// Container DI 容器
//
// AI 提供商在构造时绑定一次，进程运行期间只读。
type Container struct {
	// Shared Infrastructure
	provider    ai.Provider // nil 表示未绑定任何提供商
	cacheRepo   *cache.RedisRepository
	historyRepo *database.BunRecognitionRepository

	// OCR Module
	ocrUseCase *ocrUsecase.StockOCRUseCase
	ocrHandler *ocrHandler.OCRHandler

	// Market Module
	reviewUseCase *marketUsecase.MarketReviewUseCase
	marketHandler *marketHandler.MarketHandler
}

// NewContainer 创建新的 Container
//
// Redis 与 MySQL 均为可选依赖：连接失败只记录警告，
// OCR 核心链路在没有缓存和历史库的情况下照常工作。
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{}

	// Shared Infrastructure: AI Provider（Gemini 优先，Anthropic 备选）
	container.provider = ai.SelectProvider(cfg)

	// Shared Infrastructure: Cache Repository（可选）
	cacheRepo, err := cache.NewRedisRepository(&cfg.Redis)
	if err != nil {
		slog.Warn("Redis 缓存不可用，识别结果将不缓存", "error", err)
	} else {
		container.cacheRepo = cacheRepo
	}

	// Shared Infrastructure: Recognition History Repository（可选）
	historyRepo, err := database.NewBunRecognitionRepository(&cfg.MySQL)
	if err != nil {
		slog.Warn("MySQL 不可用，识别历史将不保存", "error", err)
	} else {
		container.historyRepo = historyRepo
	}

	// OCR Module: UseCase
	ocrUC := ocrUsecase.NewStockOCRUseCase(visionProviderOrNil(container.provider))
	container.ocrUseCase = ocrUC

	// OCR Module: Handler
	container.ocrHandler = ocrHandler.NewOCRHandler(
		ocrUC,
		cacheRepoOrNil(container.cacheRepo),
		historyRepoOrNil(container.historyRepo),
	)

	// Market Module: UseCase
	reviewUC := marketUsecase.NewMarketReviewUseCase(
		analyzerOrNil(container.provider),
		marketdata.NewSinaClient(&cfg.Market),
		searcherOrNil(search.NewService(&cfg.Search)),
		notifierOrNil(notify.NewWebhookNotifier(&cfg.Notify)),
	)
	container.reviewUseCase = reviewUC

	// Market Module: Handler
	container.marketHandler = marketHandler.NewMarketHandler(reviewUC)

	return container, nil
}

// OCRUseCase 识别用例
func (c *Container) OCRUseCase() *ocrUsecase.StockOCRUseCase {
	return c.ocrUseCase
}

// OCRHandler 识别接口处理器
func (c *Container) OCRHandler() *ocrHandler.OCRHandler {
	return c.ocrHandler
}

// MarketHandler 大盘分析接口处理器
func (c *Container) MarketHandler() *marketHandler.MarketHandler {
	return c.marketHandler
}

// Close 释放容器持有的资源
func (c *Container) Close() error {
	if c.cacheRepo != nil {
		if err := c.cacheRepo.Close(); err != nil {
			return err
		}
	}

	if c.historyRepo != nil {
		if err := c.historyRepo.Close(); err != nil {
			return err
		}
	}

	if c.provider != nil {
		if err := c.provider.Close(); err != nil {
			return err
		}
	}

	return nil
}

// 以下转换函数避免把有类型的 nil 指针塞进接口值

func visionProviderOrNil(p ai.Provider) ocrDomain.VisionProvider {
	if p == nil {
		return nil
	}
	return p
}

func analyzerOrNil(p ai.Provider) marketDomain.Analyzer {
	if p == nil {
		return nil
	}
	return p
}

func cacheRepoOrNil(r *cache.RedisRepository) ocrHandler.CacheRepositoryInterface {
	if r == nil {
		return nil
	}
	return r
}

func historyRepoOrNil(r *database.BunRecognitionRepository) ocrHandler.RecognitionHistoryInterface {
	if r == nil {
		return nil
	}
	return r
}

func searcherOrNil(s *search.Service) marketDomain.Searcher {
	if s == nil {
		return nil
	}
	return s
}

func notifierOrNil(n *notify.WebhookNotifier) marketDomain.Notifier {
	if n == nil {
		return nil
	}
	return n
}
