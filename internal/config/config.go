// Package config defines the top-level configuration for the pool ticker bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by POOLTICKER_* environment variables.
type Config struct {
	Discord   DiscordConfig   `toml:"discord"`
	Tracker   TrackerConfig   `toml:"tracker"`
	Providers ProvidersConfig `toml:"providers"`
	Server    ServerConfig    `toml:"server"`
	Redis     RedisConfig     `toml:"redis"`
	Notify    NotifyConfig    `toml:"notify"`
	LogLevel  string          `toml:"log_level"`
}

// DiscordConfig holds the bot credentials and presence settings.
type DiscordConfig struct {
	Token            string `toml:"token"`
	GreenRole        string `toml:"green_role"`
	RedRole          string `toml:"red_role"`
	GuildConcurrency int    `toml:"guild_concurrency"`
}

// TrackerConfig holds the initial pool selection. Chat commands may change
// these values at runtime; changes are not written back.
type TrackerConfig struct {
	Network         string   `toml:"network"`
	PoolAddress     string   `toml:"pool_address"`
	TrackedSide     string   `toml:"tracked_side"`
	Symbol          string   `toml:"symbol"`
	RefreshInterval duration `toml:"refresh_interval"`
}

// ProvidersConfig holds the upstream price API endpoints.
type ProvidersConfig struct {
	GeckoTerminalURL string   `toml:"geckoterminal_url"`
	ExchangeRateURL  string   `toml:"exchange_rate_url"`
	HTTPTimeout      duration `toml:"http_timeout"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// RedisConfig holds Redis connection parameters for tick fan-out.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	Channel    string `toml:"channel"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// MinRefreshInterval is the smallest interval accepted from chat commands.
const MinRefreshInterval = 5 * time.Second

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Discord: DiscordConfig{
			GreenRole:        "ticker-green",
			RedRole:          "ticker-red",
			GuildConcurrency: 4,
		},
		Tracker: TrackerConfig{
			Network:         "bsc",
			PoolAddress:     "0xaead6bd31dd66eb3a6216aaf271d0e661585b0b1",
			TrackedSide:     "base",
			Symbol:          "ASTER",
			RefreshInterval: duration{30 * time.Second},
		},
		Providers: ProvidersConfig{
			GeckoTerminalURL: "https://api.geckoterminal.com/api/v2",
			ExchangeRateURL:  "https://api.exchangerate-api.com/v4",
			HTTPTimeout:      duration{10 * time.Second},
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    3000,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   4,
			MaxRetries: 3,
			Channel:    "poolticker:ticks",
		},
		Notify: NotifyConfig{
			Events: []string{"trend_changed", "pool_changed"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Discord
	if strings.TrimSpace(c.Discord.Token) == "" {
		errs = append(errs, "discord: token must be set (or DISCORD_TOKEN)")
	}
	if c.Discord.GreenRole == "" || c.Discord.RedRole == "" {
		errs = append(errs, "discord: green_role and red_role must not be empty")
	}
	if c.Discord.GuildConcurrency < 1 {
		errs = append(errs, "discord: guild_concurrency must be >= 1")
	}

	// Tracker
	if c.Tracker.Network == "" {
		errs = append(errs, "tracker: network must not be empty")
	}
	if c.Tracker.PoolAddress == "" {
		errs = append(errs, "tracker: pool_address must not be empty")
	}
	switch strings.ToLower(c.Tracker.TrackedSide) {
	case "base", "quote":
	default:
		errs = append(errs, fmt.Sprintf("tracker: tracked_side must be base or quote, got %q", c.Tracker.TrackedSide))
	}
	if c.Tracker.RefreshInterval.Duration < MinRefreshInterval {
		errs = append(errs, fmt.Sprintf("tracker: refresh_interval must be >= %s", MinRefreshInterval))
	}

	// Providers
	if c.Providers.GeckoTerminalURL == "" {
		errs = append(errs, "providers: geckoterminal_url must not be empty")
	}
	if c.Providers.ExchangeRateURL == "" {
		errs = append(errs, "providers: exchange_rate_url must not be empty")
	}
	if c.Providers.HTTPTimeout.Duration <= 0 {
		errs = append(errs, "providers: http_timeout must be > 0")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
		if c.Redis.Channel == "" {
			errs = append(errs, "redis: channel must not be empty when enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
