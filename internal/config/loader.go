package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies environment variable overrides, and returns the
// final Config. A missing file is not an error; the bot can run from the
// environment alone. The returned Config has NOT been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known environment variables and overwrites the
// corresponding Config fields when a variable is set (i.e. not empty).
// DISCORD_TOKEN and PORT are honoured for existing deployments; the
// POOLTICKER_* names win when both are set.
func applyEnvOverrides(cfg *Config) {
	// ── Discord ──
	setStr(&cfg.Discord.Token, "DISCORD_TOKEN")
	setStr(&cfg.Discord.Token, "POOLTICKER_DISCORD_TOKEN")
	setStr(&cfg.Discord.GreenRole, "POOLTICKER_DISCORD_GREEN_ROLE")
	setStr(&cfg.Discord.RedRole, "POOLTICKER_DISCORD_RED_ROLE")
	setInt(&cfg.Discord.GuildConcurrency, "POOLTICKER_DISCORD_GUILD_CONCURRENCY")

	// ── Tracker ──
	setStr(&cfg.Tracker.Network, "POOLTICKER_TRACKER_NETWORK")
	setStr(&cfg.Tracker.PoolAddress, "POOLTICKER_TRACKER_POOL_ADDRESS")
	setStr(&cfg.Tracker.TrackedSide, "POOLTICKER_TRACKER_TRACKED_SIDE")
	setStr(&cfg.Tracker.Symbol, "POOLTICKER_TRACKER_SYMBOL")
	setDuration(&cfg.Tracker.RefreshInterval, "POOLTICKER_TRACKER_REFRESH_INTERVAL")

	// ── Providers ──
	setStr(&cfg.Providers.GeckoTerminalURL, "POOLTICKER_PROVIDERS_GECKOTERMINAL_URL")
	setStr(&cfg.Providers.ExchangeRateURL, "POOLTICKER_PROVIDERS_EXCHANGE_RATE_URL")
	setDuration(&cfg.Providers.HTTPTimeout, "POOLTICKER_PROVIDERS_HTTP_TIMEOUT")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "POOLTICKER_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "PORT")
	setInt(&cfg.Server.Port, "POOLTICKER_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "POOLTICKER_SERVER_CORS_ORIGINS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "POOLTICKER_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POOLTICKER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POOLTICKER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POOLTICKER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POOLTICKER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POOLTICKER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POOLTICKER_REDIS_TLS_ENABLED")
	setStr(&cfg.Redis.Channel, "POOLTICKER_REDIS_CHANNEL")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "POOLTICKER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POOLTICKER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POOLTICKER_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "POOLTICKER_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "POOLTICKER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
