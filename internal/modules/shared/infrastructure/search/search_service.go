package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"stock-assistant-app/internal/config"
)

// maxResults 单次检索返回的条目上限
const maxResults = 5

// keyPool 密钥池，按轮换方式取用
type keyPool struct {
	keys []string
	next uint32
}

func newKeyPool(keys []string) *keyPool {
	if len(keys) == 0 {
		return nil
	}
	return &keyPool{keys: keys}
}

// take 取下一个密钥
func (p *keyPool) take() string {
	n := atomic.AddUint32(&p.next, 1)
	return p.keys[int(n-1)%len(p.keys)]
}

// engine 单个搜索引擎的调用封装
type engine struct {
	name string
	pool *keyPool
	call func(ctx context.Context, apiKey, query string) ([]string, error)
}

// Service 聚合多个搜索引擎的联网检索服务
//
// 按 bocha > tavily > brave > serpapi 的优先级调用，
// 前一个引擎失败时降级到下一个。
type Service struct {
	httpClient *http.Client
	engines    []engine

	// 各引擎接口地址，测试时可替换为 mock 服务
	bochaEndpoint   string
	tavilyEndpoint  string
	braveEndpoint   string
	serpAPIEndpoint string
}

// NewService 创建新的搜索服务，未配置任何密钥时返回 nil
func NewService(cfg *config.SearchConfig) *Service {
	if !cfg.HasSearchKeys() {
		return nil
	}

	s := &Service{
		httpClient:      &http.Client{Timeout: 15 * time.Second},
		bochaEndpoint:   "https://api.bochaai.com/v1/web-search",
		tavilyEndpoint:  "https://api.tavily.com/search",
		braveEndpoint:   "https://api.search.brave.com/res/v1/web/search",
		serpAPIEndpoint: "https://serpapi.com/search.json",
	}

	for _, e := range []engine{
		{name: "bocha", pool: newKeyPool(cfg.BochaKeys), call: s.searchBocha},
		{name: "tavily", pool: newKeyPool(cfg.TavilyKeys), call: s.searchTavily},
		{name: "brave", pool: newKeyPool(cfg.BraveKeys), call: s.searchBrave},
		{name: "serpapi", pool: newKeyPool(cfg.SerpAPIKeys), call: s.searchSerpAPI},
	} {
		if e.pool != nil {
			s.engines = append(s.engines, e)
		}
	}

	return s
}

// Search 执行联网检索，返回 "标题: 摘要" 形式的条目
func (s *Service) Search(ctx context.Context, query string) ([]string, error) {
	var lastErr error

	for _, e := range s.engines {
		results, err := e.call(ctx, e.pool.take(), query)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", e.name, err)
			continue
		}
		if len(results) > 0 {
			return results, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("no search result")
}

// searchBocha 博查 Web 搜索
func (s *Service) searchBocha(ctx context.Context, apiKey, query string) ([]string, error) {
	requestBody := map[string]interface{}{
		"query": query,
		"count": maxResults,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.bochaEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	var response struct {
		Data struct {
			WebPages struct {
				Value []struct {
					Name    string `json:"name"`
					Snippet string `json:"snippet"`
				} `json:"value"`
			} `json:"webPages"`
		} `json:"data"`
	}
	if err := s.do(req, &response); err != nil {
		return nil, err
	}

	var results []string
	for _, v := range response.Data.WebPages.Value {
		results = append(results, v.Name+": "+v.Snippet)
	}
	return results, nil
}

// searchTavily Tavily 搜索
func (s *Service) searchTavily(ctx context.Context, apiKey, query string) ([]string, error) {
	requestBody := map[string]interface{}{
		"api_key":     apiKey,
		"query":       query,
		"max_results": maxResults,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tavilyEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := s.do(req, &response); err != nil {
		return nil, err
	}

	var results []string
	for _, v := range response.Results {
		results = append(results, v.Title+": "+v.Content)
	}
	return results, nil
}

// searchBrave Brave 搜索
func (s *Service) searchBrave(ctx context.Context, apiKey, query string) ([]string, error) {
	endpoint := s.braveEndpoint + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", apiKey)

	var response struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := s.do(req, &response); err != nil {
		return nil, err
	}

	var results []string
	for i, v := range response.Web.Results {
		if i >= maxResults {
			break
		}
		results = append(results, v.Title+": "+v.Description)
	}
	return results, nil
}

// searchSerpAPI SerpAPI 搜索
func (s *Service) searchSerpAPI(ctx context.Context, apiKey, query string) ([]string, error) {
	endpoint := fmt.Sprintf("%s?q=%s&api_key=%s",
		s.serpAPIEndpoint, url.QueryEscape(query), url.QueryEscape(apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var response struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}
	if err := s.do(req, &response); err != nil {
		return nil, err
	}

	var results []string
	for i, v := range response.OrganicResults {
		if i >= maxResults {
			break
		}
		results = append(results, v.Title+": "+v.Snippet)
	}
	return results, nil
}

// do 执行请求并解码 JSON 响应
func (s *Service) do(req *http.Request, out interface{}) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
