package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"bitsoBuyer/exchange/httpClient"
	"bitsoBuyer/strategy"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	DefaultConfigPath = "config.yaml"
	DefaultEnvPath    = ".env"
)

var envKeys = []string{"api_key", "api_secret", "api_url", "log_level", "http_timeout", "origin_ids", "local_currency"}

var (
	ErrNoOrders     = errors.New("no orders configured")
	ErrInvalidOrder = errors.New("invalid order")
)

type Config struct {
	Credentials httpClient.Credentials
	APIURL      string
	LogLevel    string
	HTTPTimeout time.Duration // 0 keeps the http.Client default
	OriginIDs   bool
	Strategy    strategy.Config
}

type fileConfig struct {
	APIKey        string           `mapstructure:"api_key"`
	APISecret     string           `mapstructure:"api_secret"`
	APIURL        string           `mapstructure:"api_url"`
	LogLevel      string           `mapstructure:"log_level"`
	HTTPTimeout   time.Duration    `mapstructure:"http_timeout"`
	OriginIDs     bool             `mapstructure:"origin_ids"`
	LocalCurrency string           `mapstructure:"local_currency"`
	Orders        []strategy.Order `mapstructure:"orders"`
	OrdersEnv     string           `mapstructure:"orders_env"`
}

// Load reads envPath into the process environment, then the YAML file at
// configPath, then environment variables (API_KEY, API_SECRET, API_URL, ...).
// Later sources win. Either file may be missing.
func Load(configPath, envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	v := viper.New()
	// orders is a list in the file; the env form is a flat string.
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("orders_env", "ORDERS")
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg := &Config{
		Credentials: httpClient.Credentials{Key: strings.TrimSpace(fc.APIKey), Secret: strings.TrimSpace(fc.APISecret)},
		APIURL:      fc.APIURL,
		LogLevel:    fc.LogLevel,
		HTTPTimeout: fc.HTTPTimeout,
		OriginIDs:   fc.OriginIDs,
		Strategy: strategy.Config{
			LocalCurrency: strings.ToLower(strings.TrimSpace(fc.LocalCurrency)),
			Orders:        fc.Orders,
		},
	}
	if fc.OrdersEnv != "" {
		orders, err := ParseOrders(fc.OrdersEnv)
		if err != nil {
			return nil, err
		}
		cfg.Strategy.Orders = orders
	}
	if len(cfg.Strategy.Orders) == 0 {
		cfg.Strategy.Orders = strategy.DefaultConfig().Orders
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := strategy.DefaultConfig()
	v.SetDefault("api_key", "")
	v.SetDefault("api_secret", "")
	v.SetDefault("api_url", httpClient.DefaultBaseURL)
	v.SetDefault("log_level", "info")
	v.SetDefault("http_timeout", "0s")
	v.SetDefault("origin_ids", false)
	v.SetDefault("local_currency", def.LocalCurrency)
}

func (c *Config) Validate() error {
	if err := c.Credentials.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Strategy.LocalCurrency == "" {
		return errors.New("config: local currency is empty")
	}
	if len(c.Strategy.Orders) == 0 {
		return ErrNoOrders
	}
	for i, o := range c.Strategy.Orders {
		if strings.TrimSpace(o.Label) == "" || strings.TrimSpace(o.Book) == "" {
			return fmt.Errorf("%w #%d: label and book are required", ErrInvalidOrder, i+1)
		}
		minor, err := decimal.NewFromString(strings.TrimSpace(o.Minor))
		if err != nil || !minor.IsPositive() {
			return fmt.Errorf("%w %s: minor %q must be a positive decimal", ErrInvalidOrder, o.Label, o.Minor)
		}
	}
	return nil
}

// ParseOrders reads "label=book:minor" items separated by commas. The label
// may be left out, in which case the book's first currency is used:
// "btc_mxn:100" is labelled "btc".
func ParseOrders(s string) ([]strategy.Order, error) {
	var out []strategy.Order
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		label, rest, hasLabel := strings.Cut(item, "=")
		if !hasLabel {
			rest = label
			label = ""
		}
		book, minor, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("%w %q: want label=book:minor", ErrInvalidOrder, item)
		}
		book = strings.TrimSpace(book)
		if label == "" {
			label, _, _ = strings.Cut(book, "_")
		}
		out = append(out, strategy.Order{
			Label: strings.TrimSpace(label),
			Book:  book,
			Minor: strings.TrimSpace(minor),
		})
	}
	if len(out) == 0 {
		return nil, ErrNoOrders
	}
	return out, nil
}
