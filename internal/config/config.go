// Package config provides configuration management for the trading application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Trading     TradingConfig `mapstructure:"trading"`
	Risk        RiskConfig    `mapstructure:"risk"`
	Agents      AgentConfig   `mapstructure:"agents"`
	Store       StoreConfig   `mapstructure:"store"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately
}

// TradingConfig holds trading-related configuration.
type TradingConfig struct {
	Symbols       []string      `mapstructure:"symbols"`
	Aggressive    bool          `mapstructure:"aggressive"`
	InitialCash   float64       `mapstructure:"initial_cash"`
	BuyFraction   float64       `mapstructure:"buy_fraction"`
	CycleInterval time.Duration `mapstructure:"cycle_interval"`
}

// RiskConfig holds the threshold settings for triggers and validation.
type RiskConfig struct {
	StopLossPct      float64 `mapstructure:"stop_loss_pct"`      // negative
	TakeProfitPct    float64 `mapstructure:"take_profit_pct"`    // positive
	TrailingStopPct  float64 `mapstructure:"trailing_stop_pct"`  // positive drawdown
	PortfolioStopPct float64 `mapstructure:"portfolio_stop_pct"` // negative
	FeePerTrade      float64 `mapstructure:"fee_per_trade"`
}

// AgentConfig holds AI agent configuration.
type AgentConfig struct {
	Model string `mapstructure:"model"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// OpenAICredentials holds OpenAI API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/cryptopilot"
	}
	return filepath.Join(home, ".config", "cryptopilot")
}

// Load loads configuration from the specified directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// No file is fine, defaults apply.
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trading.symbols", []string{"BTC", "ETH"})
	v.SetDefault("trading.aggressive", false)
	v.SetDefault("trading.initial_cash", 10000.0)
	v.SetDefault("trading.buy_fraction", 0.1)
	v.SetDefault("trading.cycle_interval", "5m")

	v.SetDefault("risk.stop_loss_pct", -3.0)
	v.SetDefault("risk.take_profit_pct", 5.0)
	v.SetDefault("risk.trailing_stop_pct", 3.0)
	v.SetDefault("risk.portfolio_stop_pct", -10.0)
	v.SetDefault("risk.fee_per_trade", 1.0)

	v.SetDefault("agents.model", "gpt-4o")

	v.SetDefault("store.path", filepath.Join(DefaultConfigDir(), "cryptopilot.db"))

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9090")
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("CRYPTOPILOT_MODEL"); v != "" {
		cfg.Agents.Model = v
	}
	if v := os.Getenv("CRYPTOPILOT_AGGRESSIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Trading.Aggressive = b
		}
	}
	if v := os.Getenv("CRYPTOPILOT_DB"); v != "" {
		cfg.Store.Path = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Trading.Symbols) == 0 {
		return fmt.Errorf("at least one trading symbol is required")
	}
	if c.Trading.BuyFraction <= 0 || c.Trading.BuyFraction > 1 {
		return fmt.Errorf("buy_fraction must be in (0, 1]")
	}
	if c.Risk.StopLossPct >= 0 {
		return fmt.Errorf("stop_loss_pct must be negative")
	}
	if c.Risk.TakeProfitPct <= 0 {
		return fmt.Errorf("take_profit_pct must be positive")
	}
	if c.Risk.TrailingStopPct <= 0 {
		return fmt.Errorf("trailing_stop_pct must be positive")
	}
	if c.Risk.PortfolioStopPct >= 0 {
		return fmt.Errorf("portfolio_stop_pct must be negative")
	}
	if c.Risk.FeePerTrade < 0 {
		return fmt.Errorf("fee_per_trade must be non-negative")
	}
	return nil
}
