package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends. The console persists its credential in memory or Redis;
// the sandbox keeps accounts in memory or PostgreSQL.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Service  ServiceConfig  `mapstructure:"service"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Sandbox  SandboxConfig  `mapstructure:"sandbox"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServiceConfig describes the remote account service origin.
type ServiceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Store     string `mapstructure:"store"`      // memory, redis
	KeyPrefix string `mapstructure:"key_prefix"` // prepended to the fixed "token"/"role" keys
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DatabaseConfig is only read by the sandbox when sandbox.store is postgres.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type SandboxConfig struct {
	Host      string          `mapstructure:"host"`
	Port      int             `mapstructure:"port"`
	Store     string          `mapstructure:"store"` // memory, postgres
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminAccount    `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// Addr returns the listen address of the sandbox service.
func (s SandboxConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// AdminAccount is seeded into the sandbox at start-up.
type AdminAccount struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// RateLimitConfig throttles sign-in attempts per client. Requires Redis.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Login   int64         `mapstructure:"login"`
	Window  time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: WALLET_.
// Nested keys use underscore: WALLET_SERVICE_BASE_URL, WALLET_SESSION_STORE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("service.base_url", "http://localhost:5000")
	v.SetDefault("service.timeout", "10s")
	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("session.key_prefix", "")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "wallet")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "wallet_sandbox")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("sandbox.host", "127.0.0.1")
	v.SetDefault("sandbox.port", 5000)
	v.SetDefault("sandbox.store", StoreMemory)
	v.SetDefault("sandbox.jwt.secret", "")
	v.SetDefault("sandbox.jwt.expiry", "1h")
	v.SetDefault("sandbox.jwt.issuer", "wallet-sandbox")
	v.SetDefault("sandbox.admin.username", "admin")
	v.SetDefault("sandbox.admin.email", "admin@example.com")
	v.SetDefault("sandbox.admin.password", "")
	v.SetDefault("sandbox.rate_limit.enabled", false)
	v.SetDefault("sandbox.rate_limit.login", 10)
	v.SetDefault("sandbox.rate_limit.window", "1m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// WALLET_SERVICE_BASE_URL -> service.base_url
	v.SetEnvPrefix("WALLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("invalid session.store %q: must be %s or %s", c.Session.Store, StoreMemory, StoreRedis)
	}
	switch c.Sandbox.Store {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("invalid sandbox.store %q: must be %s or %s", c.Sandbox.Store, StoreMemory, StorePostgres)
	}
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service.base_url is required")
	}
	if c.Sandbox.RateLimit.Enabled && (c.Sandbox.RateLimit.Login <= 0 || c.Sandbox.RateLimit.Window <= 0) {
		return fmt.Errorf("sandbox.rate_limit needs a positive login limit and window")
	}
	return nil
}
