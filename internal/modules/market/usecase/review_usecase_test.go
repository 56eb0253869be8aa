package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stock-assistant-app/internal/modules/market/domain"
)

// MockAnalyzer 分析器 mock
type MockAnalyzer struct {
	GenerateReportFunc func(ctx context.Context, prompt string) (string, error)
	CallCount          int
	LastPrompt         string
}

func (m *MockAnalyzer) GenerateReport(ctx context.Context, prompt string) (string, error) {
	m.CallCount++
	m.LastPrompt = prompt
	if m.GenerateReportFunc != nil {
		return m.GenerateReportFunc(ctx, prompt)
	}
	return "模拟复盘报告", nil
}

func (m *MockAnalyzer) Name() string {
	return "mock-analyzer"
}

// MockMarketData 行情数据 mock
type MockMarketData struct {
	IndexSnapshotFunc func(ctx context.Context) ([]domain.IndexQuote, error)
	HeadlinesFunc     func(ctx context.Context) ([]string, error)
}

func (m *MockMarketData) IndexSnapshot(ctx context.Context) ([]domain.IndexQuote, error) {
	if m.IndexSnapshotFunc != nil {
		return m.IndexSnapshotFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *MockMarketData) Headlines(ctx context.Context) ([]string, error) {
	if m.HeadlinesFunc != nil {
		return m.HeadlinesFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

// MockSearcher 检索 mock
type MockSearcher struct {
	SearchFunc func(ctx context.Context, query string) ([]string, error)
	LastQuery  string
}

func (m *MockSearcher) Search(ctx context.Context, query string) ([]string, error) {
	m.LastQuery = query
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return nil, errors.New("not implemented")
}

// MockNotifier 通知 mock
type MockNotifier struct {
	PushFunc    func(ctx context.Context, title, content string) error
	CallCount   int
	LastTitle   string
	LastContent string
}

func (m *MockNotifier) Push(ctx context.Context, title, content string) error {
	m.CallCount++
	m.LastTitle = title
	m.LastContent = content
	if m.PushFunc != nil {
		return m.PushFunc(ctx, title, content)
	}
	return nil
}

func sampleQuotes() []domain.IndexQuote {
	return []domain.IndexQuote{
		{Name: "上证指数", Point: 3091.68, ChangePct: -0.30, Amount: 31559572},
		{Name: "深证成指", Point: 9422.50, ChangePct: 0.44, Amount: 45882311},
	}
}

func TestMarketReviewUseCase_Run(t *testing.T) {
	t.Run("正常_分析器生成报告", func(t *testing.T) {
		analyzer := &MockAnalyzer{
			GenerateReportFunc: func(ctx context.Context, prompt string) (string, error) {
				return "今日大盘震荡整理，成交缩量。", nil
			},
		}
		data := &MockMarketData{
			IndexSnapshotFunc: func(ctx context.Context) ([]domain.IndexQuote, error) {
				return sampleQuotes(), nil
			},
			HeadlinesFunc: func(ctx context.Context) ([]string, error) {
				return []string{"央行逆回购维护流动性"}, nil
			},
		}
		searcher := &MockSearcher{
			SearchFunc: func(ctx context.Context, query string) ([]string, error) {
				return []string{"检索摘要: 市场观望情绪浓厚"}, nil
			},
		}

		uc := NewMarketReviewUseCase(analyzer, data, searcher, nil)

		report, err := uc.Run(context.Background(), false)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if report != "今日大盘震荡整理，成交缩量。" {
			t.Errorf("report = %q", report)
		}
		if analyzer.CallCount != 1 {
			t.Errorf("analyzer called %d times, want 1", analyzer.CallCount)
		}
		if searcher.LastQuery != searchQuery {
			t.Errorf("search query = %q, want %q", searcher.LastQuery, searchQuery)
		}

		// 提示词包含三类材料
		for _, section := range []string{"【指数表现】", "【市场要闻】", "【联网检索】", "上证指数", "央行逆回购维护流动性"} {
			if !strings.Contains(analyzer.LastPrompt, section) {
				t.Errorf("prompt missing %q", section)
			}
		}
	})

	t.Run("正常_无分析器回退模板报告", func(t *testing.T) {
		data := &MockMarketData{
			IndexSnapshotFunc: func(ctx context.Context) ([]domain.IndexQuote, error) {
				return sampleQuotes(), nil
			},
			HeadlinesFunc: func(ctx context.Context) ([]string, error) {
				return []string{"两市成交额缩量至八千亿下方"}, nil
			},
		}

		uc := NewMarketReviewUseCase(nil, data, nil, nil)

		report, err := uc.Run(context.Background(), false)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.Contains(report, "上证指数") {
			t.Errorf("report missing quote data: %q", report)
		}
		if !strings.Contains(report, "（未配置分析模型，以上为行情数据摘要）") {
			t.Errorf("report missing fallback footer: %q", report)
		}
	})

	t.Run("正常_分析器失败降级到模板", func(t *testing.T) {
		analyzer := &MockAnalyzer{
			GenerateReportFunc: func(ctx context.Context, prompt string) (string, error) {
				return "", errors.New("model overloaded")
			},
		}
		data := &MockMarketData{
			IndexSnapshotFunc: func(ctx context.Context) ([]domain.IndexQuote, error) {
				return sampleQuotes(), nil
			},
			HeadlinesFunc: func(ctx context.Context) ([]string, error) {
				return nil, errors.New("news unavailable")
			},
		}

		uc := NewMarketReviewUseCase(analyzer, data, nil, nil)

		report, err := uc.Run(context.Background(), false)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.Contains(report, "未配置分析模型") {
			t.Errorf("report = %q, want fallback template", report)
		}
	})

	t.Run("异常_无任何数据与分析器", func(t *testing.T) {
		uc := NewMarketReviewUseCase(nil, nil, nil, nil)

		_, err := uc.Run(context.Background(), false)
		if !errors.Is(err, ErrNoReport) {
			t.Fatalf("Run() error = %v, want ErrNoReport", err)
		}
	})

	t.Run("异常_数据源全部失败且无分析器", func(t *testing.T) {
		data := &MockMarketData{
			IndexSnapshotFunc: func(ctx context.Context) ([]domain.IndexQuote, error) {
				return nil, errors.New("quote service down")
			},
			HeadlinesFunc: func(ctx context.Context) ([]string, error) {
				return nil, errors.New("news service down")
			},
		}

		uc := NewMarketReviewUseCase(nil, data, nil, nil)

		_, err := uc.Run(context.Background(), false)
		if !errors.Is(err, ErrNoReport) {
			t.Fatalf("Run() error = %v, want ErrNoReport", err)
		}
	})

	t.Run("正常_启用推送时通知一次", func(t *testing.T) {
		analyzer := &MockAnalyzer{}
		notifier := &MockNotifier{}

		uc := NewMarketReviewUseCase(analyzer, nil, nil, notifier)

		report, err := uc.Run(context.Background(), true)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if notifier.CallCount != 1 {
			t.Errorf("notifier called %d times, want 1", notifier.CallCount)
		}
		if notifier.LastTitle != "大盘复盘" {
			t.Errorf("title = %q, want 大盘复盘", notifier.LastTitle)
		}
		if notifier.LastContent != report {
			t.Error("notification content differs from report")
		}
	})

	t.Run("正常_关闭推送时不通知", func(t *testing.T) {
		analyzer := &MockAnalyzer{}
		notifier := &MockNotifier{}

		uc := NewMarketReviewUseCase(analyzer, nil, nil, notifier)

		if _, err := uc.Run(context.Background(), false); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if notifier.CallCount != 0 {
			t.Errorf("notifier called %d times, want 0", notifier.CallCount)
		}
	})

	t.Run("正常_推送失败不影响返回报告", func(t *testing.T) {
		analyzer := &MockAnalyzer{}
		notifier := &MockNotifier{
			PushFunc: func(ctx context.Context, title, content string) error {
				return errors.New("webhook unreachable")
			},
		}

		uc := NewMarketReviewUseCase(analyzer, nil, nil, notifier)

		report, err := uc.Run(context.Background(), true)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if report == "" {
			t.Error("report should not be empty")
		}
	})

	t.Run("正常_检索失败仅降级", func(t *testing.T) {
		analyzer := &MockAnalyzer{}
		searcher := &MockSearcher{
			SearchFunc: func(ctx context.Context, query string) ([]string, error) {
				return nil, errors.New("all engines failed")
			},
		}

		uc := NewMarketReviewUseCase(analyzer, nil, searcher, nil)

		if _, err := uc.Run(context.Background(), false); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if strings.Contains(analyzer.LastPrompt, "【联网检索】") {
			t.Error("prompt should not contain search section when search failed")
		}
	})
}

func TestBuildFallbackReport(t *testing.T) {
	t.Run("异常_无数据返回空串", func(t *testing.T) {
		if got := buildFallbackReport(nil, nil); got != "" {
			t.Errorf("buildFallbackReport() = %q, want empty", got)
		}
	})

	t.Run("正常_仅有新闻", func(t *testing.T) {
		got := buildFallbackReport(nil, []string{"市场要闻一则"})
		if !strings.Contains(got, "市场要闻一则") {
			t.Errorf("report = %q", got)
		}
		if strings.Contains(got, "指数表现") {
			t.Errorf("report should not contain quote section: %q", got)
		}
	})

	t.Run("正常_涨跌幅带符号", func(t *testing.T) {
		got := buildFallbackReport(sampleQuotes(), nil)
		if !strings.Contains(got, "-0.30%") {
			t.Errorf("report missing negative change: %q", got)
		}
		if !strings.Contains(got, "+0.44%") {
			t.Errorf("report missing positive change: %q", got)
		}
	})
}
