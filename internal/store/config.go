package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type QuoteConfig struct {
	Last float64 `yaml:"last"`
	Bid  float64 `yaml:"bid"`
	Ask  float64 `yaml:"ask"`
}

type PositionConfig struct {
	Symbol      string  `yaml:"symbol"`
	Quantity    int64   `yaml:"quantity"`
	AverageCost float64 `yaml:"average_cost"`
	MarketPrice float64 `yaml:"market_price"`
}

type Config struct {
	Mode     string `yaml:"mode"`
	Broker   string `yaml:"broker"`
	Currency string `yaml:"currency"`
	Exchange string `yaml:"exchange"`
	Product  string `yaml:"product"`

	Webhook struct {
		Addr  string `yaml:"addr"`
		Path  string `yaml:"path"`
		Async *bool  `yaml:"async"`
	} `yaml:"webhook"`

	Telegram struct {
		Enabled            bool    `yaml:"enabled"`
		TokenEnv           string  `yaml:"token_env"`
		PollTimeoutSeconds int     `yaml:"poll_timeout_seconds"`
		AllowedChatIDs     []int64 `yaml:"allowed_chat_ids"`
	} `yaml:"telegram"`

	ConfigStore struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"config_store"`

	Engine struct {
		SerializeSymbols bool   `yaml:"serialize_symbols"`
		OrderTag         string `yaml:"order_tag"`
	} `yaml:"engine"`

	Eod struct {
		Enabled   bool   `yaml:"enabled"`
		CutoffUTC string `yaml:"cutoff_utc"`
	} `yaml:"eod"`

	Paper struct {
		Funds     float64                `yaml:"funds"`
		Quotes    map[string]QuoteConfig `yaml:"quotes"`
		Positions []PositionConfig       `yaml:"positions"`
	} `yaml:"paper"`
}

// WebhookAsync reports whether signals are evaluated off the request goroutine.
func (c *Config) WebhookAsync() bool {
	return c.Webhook.Async == nil || *c.Webhook.Async
}

// EodCutoff is the UTC time of day, as an offset from midnight, after which
// the daily journal summary is written.
func (c *Config) EodCutoff() time.Duration {
	t, err := time.Parse("15:04", c.Eod.CutoffUTC)
	if err != nil {
		return 0
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}

// PaperFunds returns the simulated cash balance as a decimal.
func (c *Config) PaperFunds() decimal.Decimal {
	return decimal.NewFromFloat(c.Paper.Funds)
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Broker != "PAPER" && c.Broker != "ZERODHA" {
		return fmt.Errorf("invalid broker '%s': must be 'PAPER' or 'ZERODHA'", c.Broker)
	}
	if c.Broker == "ZERODHA" && c.Currency != "INR" {
		return fmt.Errorf("broker ZERODHA trades in INR, got currency '%s'", c.Currency)
	}
	if c.ConfigStore.Driver != "MEMORY" && c.ConfigStore.Driver != "SQLITE" {
		return fmt.Errorf("config_store.driver must be 'MEMORY' or 'SQLITE', got '%s'", c.ConfigStore.Driver)
	}
	if c.ConfigStore.Driver == "SQLITE" && c.ConfigStore.Path == "" {
		return errors.New("config_store.path cannot be empty for SQLITE")
	}
	if !strings.HasPrefix(c.Webhook.Path, "/") {
		return fmt.Errorf("webhook.path must start with '/', got '%s'", c.Webhook.Path)
	}
	if _, err := time.Parse("15:04", c.Eod.CutoffUTC); err != nil {
		return fmt.Errorf("eod.cutoff_utc must be HH:MM, got '%s'", c.Eod.CutoffUTC)
	}
	if c.Paper.Funds < 0 {
		return fmt.Errorf("paper.funds cannot be negative, got %.2f", c.Paper.Funds)
	}
	if c.Telegram.Enabled && c.Telegram.PollTimeoutSeconds <= 0 {
		return fmt.Errorf("telegram.poll_timeout_seconds must be positive, got %d", c.Telegram.PollTimeoutSeconds)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes YAML, applies defaults and environment overrides, then validates.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.Mode = strings.ToUpper(c.Mode)
	c.Broker = strings.ToUpper(c.Broker)
	c.Currency = strings.ToUpper(c.Currency)
	c.ConfigStore.Driver = strings.ToUpper(c.ConfigStore.Driver)

	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.Broker == "" {
		c.Broker = "PAPER"
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.Exchange == "" {
		c.Exchange = "NSE"
	}
	if c.Product == "" {
		c.Product = "CNC"
	}
	if c.Webhook.Addr == "" {
		c.Webhook.Addr = ":5000"
	}
	if port := os.Getenv("WEBHOOK_PORT"); port != "" {
		c.Webhook.Addr = ":" + port
	}
	if c.Webhook.Path == "" {
		c.Webhook.Path = "/webhook"
	}
	if c.Telegram.TokenEnv == "" {
		c.Telegram.TokenEnv = "TELEGRAM_TOKEN"
	}
	if c.Telegram.PollTimeoutSeconds == 0 {
		c.Telegram.PollTimeoutSeconds = 30
	}
	if c.ConfigStore.Driver == "" {
		c.ConfigStore.Driver = "MEMORY"
	}
	if c.Eod.CutoffUTC == "" {
		c.Eod.CutoffUTC = "21:00"
	}
	if c.Engine.OrderTag == "" {
		c.Engine.OrderTag = "SIGNAL"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
