package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vedant-shah/pair/pkg/quant"
)

// Config holds every application setting. Sensitive or deployment-specific
// values can be overridden through environment variables after load.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Pair struct {
		First    string `yaml:"first"`
		Second   string `yaml:"second"`
		Interval string `yaml:"interval"`
	} `yaml:"pair"`

	API struct {
		Feed struct {
			WSURL   string `yaml:"ws_url"`
			InfoURL string `yaml:"info_url"`
		} `yaml:"feed"`
		Candles struct {
			URL   string `yaml:"url"`
			WSURL string `yaml:"ws_url"`
		} `yaml:"candles"`
		Exec struct {
			URL string `yaml:"url"`
		} `yaml:"exec"`
		Redis struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"api"`

	Trading struct {
		// AvailableToTrade is the USDC margin balance the sizing formula draws
		// on, as a decimal string.
		AvailableToTrade string `yaml:"available_to_trade"`
	} `yaml:"trading"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the yaml config file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv lets deployment environments replace endpoint settings
// without editing the config file.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("PAIR_FEED_WS_URL"); v != "" {
		cfg.API.Feed.WSURL = v
	}
	if v := os.Getenv("PAIR_FEED_INFO_URL"); v != "" {
		cfg.API.Feed.InfoURL = v
	}
	if v := os.Getenv("PAIR_CANDLES_URL"); v != "" {
		cfg.API.Candles.URL = v
	}
	if v := os.Getenv("PAIR_CANDLES_WS_URL"); v != "" {
		cfg.API.Candles.WSURL = v
	}
	if v := os.Getenv("PAIR_EXEC_URL"); v != "" {
		cfg.API.Exec.URL = v
	}
	if v := os.Getenv("PAIR_REDIS_ADDR"); v != "" {
		cfg.API.Redis.Addr = v
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Pair.First == "" || c.Pair.Second == "" {
		return fmt.Errorf("both pair assets are required (first=%q second=%q)", c.Pair.First, c.Pair.Second)
	}
	if c.Pair.First == c.Pair.Second {
		return fmt.Errorf("pair assets must differ: %s", c.Pair.First)
	}

	if iv := quant.Interval(c.Pair.Interval); !iv.Valid() {
		return fmt.Errorf("unsupported interval: %q", c.Pair.Interval)
	}

	if !isWSURL(c.API.Feed.WSURL) {
		return fmt.Errorf("invalid feed WS URL: %s", c.API.Feed.WSURL)
	}
	if !isWSURL(c.API.Candles.WSURL) {
		return fmt.Errorf("invalid candle WS URL: %s", c.API.Candles.WSURL)
	}
	if c.API.Feed.InfoURL != "" && !isHTTPURL(c.API.Feed.InfoURL) {
		return fmt.Errorf("invalid exchange info URL: %s", c.API.Feed.InfoURL)
	}
	if !strings.HasPrefix(c.API.Candles.URL, "http://") && !strings.HasPrefix(c.API.Candles.URL, "https://") {
		return fmt.Errorf("invalid candle service URL: %s", c.API.Candles.URL)
	}
	if !strings.HasPrefix(c.API.Exec.URL, "http://") && !strings.HasPrefix(c.API.Exec.URL, "https://") {
		return fmt.Errorf("invalid execution URL: %s", c.API.Exec.URL)
	}

	return nil
}

func isWSURL(u string) bool {
	return strings.HasPrefix(u, "ws://") || strings.HasPrefix(u, "wss://")
}

func isHTTPURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
