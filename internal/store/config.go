package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	StartingBalance float64  `yaml:"starting_balance"`
	Epsilon         float64  `yaml:"epsilon"`
	Symbols         []string `yaml:"symbols"`
	SnapshotPath    string   `yaml:"snapshot_path"`
	Display         struct {
		Currency   string  `yaml:"currency"`
		USDINRRate float64 `yaml:"usd_inr_rate"`
	} `yaml:"display"`
	Oracle struct {
		BaseURL         string            `yaml:"base_url"`
		TimeoutSeconds  int               `yaml:"timeout_seconds"`
		CacheTTLSeconds int               `yaml:"cache_ttl_seconds"`
		FallbackPrice   float64           `yaml:"fallback_price"`
		Pairs           map[string]string `yaml:"pairs"`
	} `yaml:"oracle"`
}

func (c *Config) Validate() error {
	if c.StartingBalance <= 0 {
		return fmt.Errorf("starting_balance must be positive, got %.2f", c.StartingBalance)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("epsilon must not be negative, got %g", c.Epsilon)
	}
	if c.Display.Currency != "USD" && c.Display.Currency != "INR" {
		return fmt.Errorf("invalid display.currency '%s': must be 'USD' or 'INR'", c.Display.Currency)
	}
	if c.Display.Currency == "INR" && c.Display.USDINRRate <= 0 {
		return fmt.Errorf("display.usd_inr_rate must be positive when currency is INR, got %.2f", c.Display.USDINRRate)
	}
	if c.Oracle.TimeoutSeconds < 0 {
		return fmt.Errorf("oracle.timeout_seconds must not be negative, got %d", c.Oracle.TimeoutSeconds)
	}
	if c.Oracle.FallbackPrice < 0 {
		return fmt.Errorf("oracle.fallback_price must not be negative, got %.2f", c.Oracle.FallbackPrice)
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

	if c.StartingBalance == 0 {
		c.StartingBalance = 10000
	}
	if len(c.Symbols) == 0 {
		c.Symbols = []string{"BTCUSDT", "ETHUSDT"}
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = "data/account.json"
	}
	if c.Display.Currency == "" {
		c.Display.Currency = "USD"
	}
	if c.Display.USDINRRate == 0 {
		c.Display.USDINRRate = 83.0
	}
	if c.Oracle.TimeoutSeconds == 0 {
		c.Oracle.TimeoutSeconds = 5
	}
	if c.Oracle.CacheTTLSeconds == 0 {
		c.Oracle.CacheTTLSeconds = 30
	}
	if c.Oracle.FallbackPrice == 0 {
		c.Oracle.FallbackPrice = 50000
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
