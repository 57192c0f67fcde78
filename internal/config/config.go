// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (onecard.yaml), with ${VAR} references expanded
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg, err := config.LoadOrEnv("onecard.yaml")
//	store, err := sqlite.New(cfg.Storage.DatabasePath)
//	cashback, err := cfg.Allocation.CashbackTable()
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/onecard/internal/allocation"
	"github.com/mmynk/onecard/internal/models"
	"github.com/mmynk/onecard/internal/notify"
	"github.com/mmynk/onecard/internal/session"
)

// DevJWTSecret is used when no secret is configured. The server warns
// when it is in use.
const DevJWTSecret = "onecard-dev-secret"

// Config represents the entire application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Auth       AuthConfig       `yaml:"auth"`
	Session    SessionConfig    `yaml:"session"`
	Allocation AllocationConfig `yaml:"allocation"`
	Notify     NotifyConfig     `yaml:"notify"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Address    string `yaml:"address"`
	StaticPath string `yaml:"static_path"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// AuthConfig holds token settings. A zero TokenTTL means the session
// duration.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// AdminEmail and AdminPassword seed the first admin account at
	// startup. Further admins are registered by an admin.
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// SessionConfig holds session timeout settings
type SessionConfig struct {
	Duration            time.Duration `yaml:"duration"`
	Warning             time.Duration `yaml:"warning"`
	PollInterval        time.Duration `yaml:"poll_interval"`
	AuthenticatedRoutes []string      `yaml:"authenticated_routes"`

	// NotifyDestination is the number expiry messages are sent to.
	NotifyDestination string `yaml:"notify_destination"`
}

// AllocationConfig overrides the built-in rate tables. A nil table keeps
// the default.
type AllocationConfig struct {
	Cashback   *RateTableConfig `yaml:"cashback"`
	DealMarkup *RateTableConfig `yaml:"deal_markup"`
}

// RateTableConfig is a rate table with rates written as decimal strings
// ("0.025") so they are never parsed as floats.
type RateTableConfig struct {
	PoolRate string       `yaml:"pool_rate"`
	Rules    []RuleConfig `yaml:"rules"`
}

// RuleConfig is one (role, mode) rule. An empty mode matches both modes.
type RuleConfig struct {
	Role               string `yaml:"role"`
	Mode               string `yaml:"mode"`
	Customer           string `yaml:"customer"`
	Vendor             string `yaml:"vendor"`
	Admin              string `yaml:"admin"`
	RegisteredBonus    string `yaml:"registered_bonus"`
	CustomerMultiplier string `yaml:"customer_multiplier"`
}

// NotifyConfig holds WhatsApp and edge function settings
type NotifyConfig struct {
	WhatsAppBase  string        `yaml:"whatsapp_base"`
	Endpoint      string        `yaml:"endpoint"`
	APIKey        string        `yaml:"api_key"`
	RetryMax      int           `yaml:"retry_max"`
	RetryWaitMin  time.Duration `yaml:"retry_wait_min"`
	RetryWaitMax  time.Duration `yaml:"retry_wait_max"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${JWT_SECRET})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Address:    getEnv("ONECARD_ADDR", ":8080"),
			StaticPath: getEnv("STATIC_PATH", "../frontend/static"),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("DB_PATH", "./data/onecard.db"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", DevJWTSecret),
			TokenTTL:  getEnvDuration("TOKEN_TTL", 0),

			AdminEmail:    os.Getenv("ADMIN_EMAIL"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Session: SessionConfig{
			Duration:          getEnvDuration("SESSION_DURATION", 0),
			Warning:           getEnvDuration("SESSION_WARNING", 0),
			PollInterval:      getEnvDuration("SESSION_POLL_INTERVAL", 0),
			NotifyDestination: os.Getenv("SESSION_NOTIFY_TO"),
		},
		Notify: NotifyConfig{
			WhatsAppBase: getEnv("WHATSAPP_BASE_URL", notify.DefaultWhatsAppBase),
			Endpoint:     os.Getenv("NOTIFY_ENDPOINT"),
			APIKey:       os.Getenv("NOTIFY_API_KEY"),
			RetryMax:     getEnvInt("NOTIFY_RETRY_MAX", 3),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv loads path if it exists and falls back to environment
// variables otherwise. A file that exists but cannot be parsed is an error.
func LoadOrEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return LoadFromEnv(), nil
	}
	return cfg, err
}

func (c *Config) applyDefaults() {
	def := session.DefaultPolicy()
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "./data/onecard.db"
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = DevJWTSecret
	}
	if c.Session.Duration == 0 {
		c.Session.Duration = def.Duration
	}
	if c.Session.Warning == 0 {
		c.Session.Warning = def.Warning
	}
	if c.Session.PollInterval == 0 {
		c.Session.PollInterval = def.PollInterval
	}
	if len(c.Session.AuthenticatedRoutes) == 0 {
		c.Session.AuthenticatedRoutes = session.DefaultAuthenticatedRoutes
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = c.Session.Duration
	}
	if c.Notify.WhatsAppBase == "" {
		c.Notify.WhatsAppBase = notify.DefaultWhatsAppBase
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the session timings, the bootstrap admin and both rate
// tables.
func (c *Config) Validate() error {
	s := c.Session
	if s.Duration <= 0 || s.Warning < 0 || s.PollInterval <= 0 {
		return errors.New("session timings must be positive")
	}
	if s.Warning >= s.Duration {
		return fmt.Errorf("session warning %s must be shorter than duration %s", s.Warning, s.Duration)
	}
	if c.Auth.AdminEmail != "" && c.Auth.AdminPassword == "" {
		return errors.New("auth.admin_password is required with auth.admin_email")
	}
	if _, err := c.Allocation.CashbackTable(); err != nil {
		return err
	}
	if _, err := c.Allocation.DealMarkupTable(); err != nil {
		return err
	}
	return nil
}

// UsingDevSecret reports whether the JWT secret is the built-in one.
func (c *Config) UsingDevSecret() bool {
	return c.Auth.JWTSecret == DevJWTSecret
}

// SessionPolicy returns the session timings.
func (c *Config) SessionPolicy() session.Policy {
	return session.Policy{
		Duration:     c.Session.Duration,
		Warning:      c.Session.Warning,
		PollInterval: c.Session.PollInterval,
	}
}

// NotifyHTTP returns the edge function dispatcher settings.
func (c *Config) NotifyHTTP() notify.HTTPConfig {
	return notify.HTTPConfig{
		Endpoint:      c.Notify.Endpoint,
		APIKey:        c.Notify.APIKey,
		RetryMax:      c.Notify.RetryMax,
		RetryWaitMin:  c.Notify.RetryWaitMin,
		RetryWaitMax:  c.Notify.RetryWaitMax,
		Timeout:       c.Notify.Timeout,
		RatePerSecond: c.Notify.RatePerSecond,
		Burst:         c.Notify.Burst,
	}
}

// CashbackTable builds the configured cashback table, or the default.
func (a AllocationConfig) CashbackTable() (*allocation.RateTable, error) {
	if a.Cashback == nil {
		return allocation.DefaultCashbackTable(), nil
	}
	return a.Cashback.Build(allocation.TableCashback)
}

// DealMarkupTable builds the configured deal markup table, or the default.
func (a AllocationConfig) DealMarkupTable() (*allocation.RateTable, error) {
	if a.DealMarkup == nil {
		return allocation.DefaultDealMarkupTable(), nil
	}
	return a.DealMarkup.Build(allocation.TableDealMarkup)
}

// Build parses the rates and validates the resulting table.
func (c RateTableConfig) Build(name string) (*allocation.RateTable, error) {
	pool, err := parseRate(name+".pool_rate", c.PoolRate, decimal.NewFromInt(1))
	if err != nil {
		return nil, err
	}

	rules := make([]allocation.Rule, 0, len(c.Rules))
	for i, rc := range c.Rules {
		field := fmt.Sprintf("%s.rules[%d]", name, i)
		role, err := models.ParseRole(rc.Role)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		rule := allocation.Rule{Role: role, Mode: models.PurchaseMode(rc.Mode)}

		rates := []struct {
			key string
			raw string
			dst *decimal.Decimal
		}{
			{"customer", rc.Customer, &rule.CustomerRate},
			{"vendor", rc.Vendor, &rule.VendorRate},
			{"admin", rc.Admin, &rule.AdminRate},
			{"registered_bonus", rc.RegisteredBonus, &rule.RegisteredBonusRate},
			{"customer_multiplier", rc.CustomerMultiplier, &rule.CustomerMultiplier},
		}
		for _, r := range rates {
			if *r.dst, err = parseRate(field+"."+r.key, r.raw, decimal.Zero); err != nil {
				return nil, err
			}
		}
		rules = append(rules, rule)
	}

	return allocation.NewRateTable(name, pool, rules...)
}

func parseRate(field, raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid rate %q: %w", field, raw, err)
	}
	return d, nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
