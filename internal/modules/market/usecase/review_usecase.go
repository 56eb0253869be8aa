package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stock-assistant-app/internal/modules/market/domain"
)

// ErrNoReport 复盘流程结束但没有产出报告
var ErrNoReport = errors.New("复盘分析未生成报告")

// searchQuery 联网检索使用的固定查询词
const searchQuery = "今日A股大盘走势 复盘"

// MarketReviewUseCase 大盘复盘用例
//
// 四个协作方均可为 nil：行情、新闻、检索的失败只做降级不报错，
// 没有分析器时用本地模板生成报告。
type MarketReviewUseCase struct {
	analyzer domain.Analyzer
	data     domain.MarketData
	searcher domain.Searcher
	notifier domain.Notifier
}

// NewMarketReviewUseCase 创建新的 MarketReviewUseCase
func NewMarketReviewUseCase(
	analyzer domain.Analyzer,
	data domain.MarketData,
	searcher domain.Searcher,
	notifier domain.Notifier,
) *MarketReviewUseCase {
	return &MarketReviewUseCase{
		analyzer: analyzer,
		data:     data,
		searcher: searcher,
		notifier: notifier,
	}
}

// Run 执行当日大盘复盘
//
// sendNotification 为 false 时仅返回报告不推送，HTTP 入口走这条路径。
func (uc *MarketReviewUseCase) Run(ctx context.Context, sendNotification bool) (string, error) {
	var (
		quotes    []domain.IndexQuote
		headlines []string
		snippets  []string
	)

	if uc.data != nil {
		var err error
		if quotes, err = uc.data.IndexSnapshot(ctx); err != nil {
			slog.Warn("指数行情获取失败", "error", err)
		}
		if headlines, err = uc.data.Headlines(ctx); err != nil {
			slog.Warn("财经新闻获取失败", "error", err)
		}
	}

	if uc.searcher != nil {
		var err error
		if snippets, err = uc.searcher.Search(ctx, searchQuery); err != nil {
			slog.Warn("联网检索失败", "error", err)
		}
	}

	report := uc.generateReport(ctx, quotes, headlines, snippets)
	if strings.TrimSpace(report) == "" {
		return "", ErrNoReport
	}

	if sendNotification && uc.notifier != nil {
		if err := uc.notifier.Push(ctx, "大盘复盘", report); err != nil {
			slog.Warn("复盘通知推送失败", "error", err)
		}
	}

	return report, nil
}

// generateReport 优先用分析器生成，失败或未配置时回退到本地模板
func (uc *MarketReviewUseCase) generateReport(ctx context.Context, quotes []domain.IndexQuote, headlines, snippets []string) string {
	if uc.analyzer != nil {
		report, err := uc.analyzer.GenerateReport(ctx, buildReviewPrompt(quotes, headlines, snippets))
		if err != nil {
			slog.Warn("复盘分析器调用失败，使用模板报告", "provider", uc.analyzer.Name(), "error", err)
		} else if strings.TrimSpace(report) != "" {
			return report
		}
	}

	return buildFallbackReport(quotes, headlines)
}

// buildReviewPrompt 组装复盘分析提示词
func buildReviewPrompt(quotes []domain.IndexQuote, headlines, snippets []string) string {
	var b strings.Builder

	b.WriteString("你是一名 A 股市场分析师，请根据以下材料撰写当日大盘复盘报告。\n")
	b.WriteString("要求：总结指数表现、分析市场情绪、提炼当日主线，最后给出次日关注要点。\n\n")
	fmt.Fprintf(&b, "日期：%s\n\n", time.Now().Format("2006-01-02"))

	if len(quotes) > 0 {
		b.WriteString("【指数表现】\n")
		for _, q := range quotes {
			fmt.Fprintf(&b, "- %s：%.2f 点，涨跌幅 %+.2f%%，成交额 %.0f 万元\n",
				q.Name, q.Point, q.ChangePct, q.Amount)
		}
		b.WriteString("\n")
	}

	if len(headlines) > 0 {
		b.WriteString("【市场要闻】\n")
		for _, h := range headlines {
			fmt.Fprintf(&b, "- %s\n", h)
		}
		b.WriteString("\n")
	}

	if len(snippets) > 0 {
		b.WriteString("【联网检索】\n")
		for _, s := range snippets {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// buildFallbackReport 无分析器时的数据型模板报告，无数据时返回空串
func buildFallbackReport(quotes []domain.IndexQuote, headlines []string) string {
	if len(quotes) == 0 && len(headlines) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "【大盘复盘】%s\n\n", time.Now().Format("2006-01-02"))

	if len(quotes) > 0 {
		b.WriteString("指数表现：\n")
		for _, q := range quotes {
			fmt.Fprintf(&b, "- %s %.2f（%+.2f%%）\n", q.Name, q.Point, q.ChangePct)
		}
		b.WriteString("\n")
	}

	if len(headlines) > 0 {
		b.WriteString("市场要闻：\n")
		for _, h := range headlines {
			fmt.Fprintf(&b, "- %s\n", h)
		}
		b.WriteString("\n")
	}

	b.WriteString("（未配置分析模型，以上为行情数据摘要）")
	return b.String()
}
