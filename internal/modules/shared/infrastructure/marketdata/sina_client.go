package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"stock-assistant-app/internal/config"
	"stock-assistant-app/internal/modules/market/domain"
)

// indexNameBySymbol 指数代码到中文名的映射
//
// 行情接口返回的名称字段是 GBK 编码，这里用本地映射避免转码。
var indexNameBySymbol = map[string]string{
	"s_sh000001": "上证指数",
	"s_sz399001": "深证成指",
	"s_sz399006": "创业板指",
}

const (
	maxHeadlines      = 10
	minHeadlineLength = 8
)

// SinaClient 新浪财经行情与新闻数据客户端
type SinaClient struct {
	httpClient *http.Client
	quoteURL   string
	newsURL    string
}

// NewSinaClient 创建新的 SinaClient
func NewSinaClient(cfg *config.MarketConfig) *SinaClient {
	return &SinaClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		quoteURL:   cfg.QuoteURL,
		newsURL:    cfg.NewsURL,
	}
}

// IndexSnapshot 拉取主要指数的当前快照
func (c *SinaClient) IndexSnapshot(ctx context.Context) ([]domain.IndexQuote, error) {
	body, err := c.get(ctx, c.quoteURL)
	if err != nil {
		return nil, err
	}

	quotes := parseQuoteResponse(string(body))
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no index quote parsed from response")
	}

	return quotes, nil
}

// Headlines 抓取财经页面上的新闻标题
func (c *SinaClient) Headlines(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, c.newsURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse news page: %w", err)
	}

	var headlines []string
	seen := make(map[string]struct{})

	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(title) < minHeadlineLength {
			return true
		}
		if _, ok := seen[title]; ok {
			return true
		}
		headlines = append(headlines, title)
		seen[title] = struct{}{}
		return len(headlines) < maxHeadlines
	})

	if len(headlines) == 0 {
		return nil, fmt.Errorf("no headline found on news page")
	}

	return headlines, nil
}

// get 发起 GET 请求并读取响应体
func (c *SinaClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// 新浪行情接口要求携带站内 Referer
	req.Header.Set("Referer", "https://finance.sina.com.cn")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s status=%d", url, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// parseQuoteResponse 解析 sinajs 行情文本
//
// 每行形如 var hq_str_s_sh000001="上证指数,3091.68,-9.34,-0.30,2896100,31559572";
// 字段依次为 名称,点位,涨跌额,涨跌幅,成交量(手),成交额(万元)。
func parseQuoteResponse(body string) []domain.IndexQuote {
	var quotes []domain.IndexQuote

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		start := strings.Index(line, `"`)
		end := strings.LastIndex(line, `"`)
		if start < 0 || end <= start {
			continue
		}

		fields := strings.Split(line[start+1:end], ",")
		if len(fields) < 6 {
			continue
		}

		name := indexNameForLine(line)
		if name == "" {
			name = fields[0]
		}

		point, err1 := strconv.ParseFloat(fields[1], 64)
		changePct, err2 := strconv.ParseFloat(fields[3], 64)
		amount, err3 := strconv.ParseFloat(fields[5], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		quotes = append(quotes, domain.IndexQuote{
			Name:      name,
			Point:     point,
			ChangePct: changePct,
			Amount:    amount,
		})
	}

	return quotes
}

// indexNameForLine 按行内出现的指数代码查本地名称表
func indexNameForLine(line string) string {
	for symbol, name := range indexNameBySymbol {
		if strings.Contains(line, symbol) {
			return name
		}
	}
	return ""
}
