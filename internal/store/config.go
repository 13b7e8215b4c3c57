package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Classifier struct {
		VocabPath      string  `yaml:"vocab_path"`
		MaxPieceLen    int     `yaml:"max_piece_len"`
		RouteThreshold float64 `yaml:"route_threshold"`
	} `yaml:"classifier"`
	MarketData struct {
		Provider      string `yaml:"provider"` // MOCK, ALPHAVANTAGE, KITE
		CacheDir      string `yaml:"cache_dir"`
		CacheTTLHours int    `yaml:"cache_ttl_hours"`
		RatePerMinute int    `yaml:"rate_per_minute"`
		APIKeyEnv     string `yaml:"api_key_env"`
		Kite          struct {
			Exchange       string `yaml:"exchange"`
			APIKeyEnv      string `yaml:"api_key_env"`
			AccessTokenEnv string `yaml:"access_token_env"`
		} `yaml:"kite"`
	} `yaml:"marketdata"`
	News struct {
		Enabled        bool `yaml:"enabled"`
		MaxHeadlines   int  `yaml:"max_headlines"`
		CacheMinutes   int  `yaml:"cache_minutes"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
	} `yaml:"news"`
	Research struct {
		MaxChartPoints  int `yaml:"max_chart_points"`
		ReportHeadlines int `yaml:"report_headlines"`
		SMAPeriod       int `yaml:"sma_period"`
	} `yaml:"research"`
	Server struct {
		Port           int `yaml:"port"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"server"`
	DecisionLog struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"decision_log"`
}

func (c *Config) Validate() error {
	if c.Classifier.VocabPath == "" {
		return fmt.Errorf("classifier.vocab_path cannot be empty")
	}
	if c.Classifier.MaxPieceLen <= 0 {
		return fmt.Errorf("classifier.max_piece_len must be positive, got %d", c.Classifier.MaxPieceLen)
	}
	if c.Classifier.RouteThreshold <= 0 || c.Classifier.RouteThreshold > 1 {
		return fmt.Errorf("classifier.route_threshold must be in (0, 1], got %.2f", c.Classifier.RouteThreshold)
	}
	p := c.MarketData.Provider
	if p != "MOCK" && p != "ALPHAVANTAGE" && p != "KITE" {
		return fmt.Errorf("invalid marketdata.provider '%s': must be 'MOCK', 'ALPHAVANTAGE', or 'KITE'", p)
	}
	if c.MarketData.RatePerMinute <= 0 {
		return fmt.Errorf("marketdata.rate_per_minute must be positive, got %d", c.MarketData.RatePerMinute)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1-65535, got %d", c.Server.Port)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Classifier.MaxPieceLen == 0 {
		c.Classifier.MaxPieceLen = 20
	}
	if c.Classifier.RouteThreshold == 0 {
		c.Classifier.RouteThreshold = 0.5
	}
	if c.MarketData.Provider == "" {
		c.MarketData.Provider = "MOCK"
	}
	if c.MarketData.CacheDir == "" {
		c.MarketData.CacheDir = "cache/marketdata"
	}
	if c.MarketData.CacheTTLHours == 0 {
		c.MarketData.CacheTTLHours = 24
	}
	if c.MarketData.RatePerMinute == 0 {
		c.MarketData.RatePerMinute = 5
	}
	if c.MarketData.APIKeyEnv == "" {
		c.MarketData.APIKeyEnv = "ALPHAVANTAGE_API_KEY"
	}
	if c.MarketData.Kite.Exchange == "" {
		c.MarketData.Kite.Exchange = "NSE"
	}
	if c.MarketData.Kite.APIKeyEnv == "" {
		c.MarketData.Kite.APIKeyEnv = "KITE_API_KEY"
	}
	if c.MarketData.Kite.AccessTokenEnv == "" {
		c.MarketData.Kite.AccessTokenEnv = "KITE_ACCESS_TOKEN"
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 5
	}
	if c.News.CacheMinutes == 0 {
		c.News.CacheMinutes = 15
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 10
	}
	if c.Research.MaxChartPoints == 0 {
		c.Research.MaxChartPoints = 120
	}
	if c.Research.ReportHeadlines == 0 {
		c.Research.ReportHeadlines = 3
	}
	if c.Research.SMAPeriod == 0 {
		c.Research.SMAPeriod = 20
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.DecisionLog.Dir == "" {
		c.DecisionLog.Dir = "logs"
	}
	if c.DecisionLog.RetentionDays == 0 {
		c.DecisionLog.RetentionDays = 7
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
