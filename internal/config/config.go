package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// placeholderPrefix 模板配置里的占位符前缀，以此开头的密钥视为未配置
const placeholderPrefix = "your_"

// Config 应用全局配置
type Config struct {
	Gemini    GeminiConfig    `yaml:"gemini"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Redis     RedisConfig     `yaml:"redis"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Search    SearchConfig    `yaml:"search"`
	Notify    NotifyConfig    `yaml:"notify"`
	Market    MarketConfig    `yaml:"market"`
}

// GeminiConfig Gemini API 配置
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// AnthropicConfig Anthropic API 配置
type AnthropicConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// SearchConfig 联网搜索配置，每个引擎支持多个密钥轮换
type SearchConfig struct {
	BochaKeys   []string `yaml:"bocha_keys"`
	TavilyKeys  []string `yaml:"tavily_keys"`
	BraveKeys   []string `yaml:"brave_keys"`
	SerpAPIKeys []string `yaml:"serpapi_keys"`
}

// NotifyConfig 通知推送配置
type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// MarketConfig 大盘复盘数据源配置
type MarketConfig struct {
	QuoteURL string `yaml:"quote_url"`
	NewsURL  string `yaml:"news_url"`
}

// Load 读取配置文件，文件不存在时回退到默认配置
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 支持 ${VAR} 形式的环境变量展开
	dataStr := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(dataStr), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// DefaultConfig 从环境变量构造默认配置
func DefaultConfig() *Config {
	cfg := &Config{
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Anthropic: AnthropicConfig{
			APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
			BaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
			Model:   os.Getenv("ANTHROPIC_MODEL"),
		},
		Redis: RedisConfig{
			Host:     envOr("REDIS_HOST", "localhost"),
			Port:     6379,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		MySQL: MySQLConfig{
			Host:     envOr("MYSQL_HOST", "localhost"),
			Port:     3306,
			User:     "root",
			Password: os.Getenv("MYSQL_ROOT_PASSWORD"),
			Database: "stock_assistant",
		},
		Search: SearchConfig{
			BochaKeys:   splitKeys(os.Getenv("BOCHA_API_KEYS")),
			TavilyKeys:  splitKeys(os.Getenv("TAVILY_API_KEYS")),
			BraveKeys:   splitKeys(os.Getenv("BRAVE_API_KEYS")),
			SerpAPIKeys: splitKeys(os.Getenv("SERPAPI_KEYS")),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}

	cfg.applyDefaults()
	return cfg
}

// applyDefaults 补齐缺省字段
func (c *Config) applyDefaults() {
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-3-5-sonnet-20241022"
	}
	if c.Anthropic.MaxTokens <= 0 {
		c.Anthropic.MaxTokens = 4096
	}
	if c.Market.QuoteURL == "" {
		c.Market.QuoteURL = "https://hq.sinajs.cn/list=s_sh000001,s_sz399001,s_sz399006"
	}
	if c.Market.NewsURL == "" {
		c.Market.NewsURL = "https://finance.sina.com.cn/stock/"
	}
}

// Save 保存配置到文件
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured 判断密钥是否已配置，空值或占位符均视为未配置
func IsConfigured(key string) bool {
	return key != "" && !strings.HasPrefix(key, placeholderPrefix)
}

// HasSearchKeys 判断是否配置了任一搜索引擎密钥
func (c *SearchConfig) HasSearchKeys() bool {
	return len(c.BochaKeys) > 0 || len(c.TavilyKeys) > 0 ||
		len(c.BraveKeys) > 0 || len(c.SerpAPIKeys) > 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitKeys 拆分逗号分隔的密钥列表
func splitKeys(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}
