// Package config resolves the faucet service's typed configuration from
// the process environment. There is no package-level singleton: callers
// construct a *Config via Load and pass it explicitly to every component
// that needs it.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"

	"github.com/suifx/faucet/pkg/utils"
)

// Network identifies which chain environment the dispatcher targets.
type Network string

const (
	NetworkTestnet Network = "testnet"
	NetworkDevnet  Network = "devnet"
	NetworkMainnet Network = "mainnet"
)

// Config is the immutable set of options recognized by the service.
type Config struct {
	Env string // "development" or "production"

	// Authentication / sessions.
	APIKey    string // legacy master key, honored on the faucet endpoint
	JWTSecret []byte // HMAC secret for admin session tokens, >=32 bytes

	// Admin bootstrap.
	AdminUsername string
	AdminPassword string

	// Chain dispatch.
	Network         Network
	RPCURL          string
	PrivateKeyHex   string // optional; presence enables wallet mode
	DefaultAmount   int64  // base-units
	MaxAmount       int64  // base-units
	MinWalletBalance int64 // base-units

	// Backends.
	CacheURL string // optional; absence means in-memory mode
	DBURL    string // optional; absence means degraded mode

	// Rate limiting defaults (overridable at runtime via RateLimitSetting rows).
	RateWindowMS int64
	MaxPerWallet int
	MaxPerIP     int
	MaxPerGlobal int

	// HTTP surface.
	HTTPPort   string
	LogLevel   string
	CORSOrigin string

	// Ambient knobs not named in spec.md's §4.1 table but required by the
	// operational behavior the rest of the spec describes.
	ClientIDPrefix        string
	APIKeyPrefix          string
	ShutdownGraceSeconds  int
	RequestTimeoutSeconds int
	BalancePollInterval   int // seconds
	BotUserAgentSuffix    string
}

// Load reads and validates configuration from the process environment,
// optionally merging a .env file if present (a missing .env file is not
// an error — this mirrors running inside a container where env vars are
// injected directly).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:           utils.EnvOrDefault("NODE_ENV", "development"),
		APIKey:        utils.EnvOrDefault("API_KEY", ""),
		AdminUsername: utils.EnvOrDefault("ADMIN_USERNAME", ""),
		AdminPassword: utils.EnvOrDefault("ADMIN_PASSWORD", ""),

		Network:       Network(utils.EnvOrDefault("NETWORK", string(NetworkTestnet))),
		RPCURL:        utils.EnvOrDefault("RPC_URL", ""),
		PrivateKeyHex: utils.EnvOrDefault("PRIVATE_KEY", ""),

		DefaultAmount:    utils.EnvOrDefaultInt64("DEFAULT_AMOUNT", 100_000_000),
		MaxAmount:        utils.EnvOrDefaultInt64("MAX_AMOUNT", 1_000_000_000),
		MinWalletBalance: utils.EnvOrDefaultInt64("MIN_WALLET_BALANCE", 1_000_000_000),

		CacheURL: utils.EnvOrDefault("CACHE_URL", ""),
		DBURL:    utils.EnvOrDefault("DB_URL", ""),

		RateWindowMS: utils.EnvOrDefaultInt64("RATE_WINDOW_MS", 3_600_000),
		MaxPerWallet: utils.EnvOrDefaultInt("MAX_PER_WALLET", 1),
		MaxPerIP:     utils.EnvOrDefaultInt("MAX_PER_IP", 10),
		MaxPerGlobal: utils.EnvOrDefaultInt("MAX_PER_GLOBAL", 1000),

		HTTPPort:   utils.EnvOrDefault("HTTP_PORT", "8080"),
		LogLevel:   utils.EnvOrDefault("LOG_LEVEL", "info"),
		CORSOrigin: utils.EnvOrDefault("CORS_ORIGIN", "*"),

		ClientIDPrefix:        utils.EnvOrDefault("CLIENT_ID_PREFIX", "sfx"),
		APIKeyPrefix:          utils.EnvOrDefault("API_KEY_PREFIX", "sfx"),
		ShutdownGraceSeconds:  utils.EnvOrDefaultInt("SHUTDOWN_GRACE_SECONDS", 30),
		RequestTimeoutSeconds: utils.EnvOrDefaultInt("REQUEST_TIMEOUT_SECONDS", 10),
		BalancePollInterval:   utils.EnvOrDefaultInt("BALANCE_POLL_INTERVAL", 60),
		BotUserAgentSuffix:    utils.EnvOrDefault("BOT_USER_AGENT_SUFFIX", ""),
	}

	secret := utils.EnvOrDefault("JWT_SECRET", "")
	cfg.JWTSecret = []byte(secret)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the service is running outside production.
func (c *Config) IsDevelopment() bool {
	return !strings.EqualFold(c.Env, "production")
}

// WalletModeConfigured reports whether a local signing key was supplied.
func (c *Config) WalletModeConfigured() bool {
	return c.PrivateKeyHex != ""
}

func (c *Config) validate() error {
	var missing []string

	if c.MaxAmount < c.DefaultAmount {
		return utils.Wrap(fmt.Errorf("MAX_AMOUNT (%d) must be >= DEFAULT_AMOUNT (%d)", c.MaxAmount, c.DefaultAmount), "config")
	}
	if c.DefaultAmount <= 0 {
		missing = append(missing, "DEFAULT_AMOUNT must be > 0")
	}
	if len(c.JWTSecret) < 32 && !c.IsDevelopment() {
		missing = append(missing, "JWT_SECRET (>=32 bytes, required outside development mode)")
	}
	switch c.Network {
	case NetworkTestnet, NetworkDevnet, NetworkMainnet:
	default:
		missing = append(missing, fmt.Sprintf("NETWORK has unrecognized value %q", c.Network))
	}

	if len(missing) > 0 {
		return utils.Wrap(fmt.Errorf("invalid configuration: %s", strings.Join(missing, "; ")), "config")
	}
	return nil
}
