package domain

import "context"

// IndexQuote 指数行情快照
type IndexQuote struct {
	Name      string  // 指数名称
	Point     float64 // 当前点位
	ChangePct float64 // 涨跌幅（百分比）
	Amount    float64 // 成交额（万元）
}

// Analyzer 复盘报告生成器接口
type Analyzer interface {
	GenerateReport(ctx context.Context, prompt string) (string, error)
	Name() string
}

// MarketData 行情与新闻数据源接口
type MarketData interface {
	// IndexSnapshot 主要指数当前快照
	IndexSnapshot(ctx context.Context) ([]IndexQuote, error)

	// Headlines 当日财经新闻标题
	Headlines(ctx context.Context) ([]string, error)
}

// Searcher 联网搜索接口
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Notifier 通知推送接口
type Notifier interface {
	Push(ctx context.Context, title, content string) error
}
