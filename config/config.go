package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	AES        AESConfig        `mapstructure:"aes"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Exchange   ExchangeConfig   `mapstructure:"exchange"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

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

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

// AdminConfig identifies the authorized admin principal.
type AdminConfig struct {
	Email string `mapstructure:"email"`
}

// ExchangeConfig controls USD -> platform currency conversion.
type ExchangeConfig struct {
	RateServiceURL   string        `mapstructure:"rate_service_url"`
	PlatformCurrency string        `mapstructure:"platform_currency"`
	FallbackRate     float64       `mapstructure:"fallback_rate"`
	FeeBufferPercent float64       `mapstructure:"fee_buffer_percent"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
}

// ProviderConfig controls outbound calls to SMM provider APIs.
type ProviderConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// SettlementConfig holds fund settlement policy values.
type SettlementConfig struct {
	CommissionRate float64 `mapstructure:"commission_rate"` // e.g. 0.05 = 5%
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// rateCacheTTLCap is the hard upper bound on the exchange rate cache:
// a cached rate older than one day must never be served.
const rateCacheTTLCap = 24 * time.Hour

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: SMM_.
// Nested keys use underscore: SMM_DATABASE_HOST, SMM_ADMIN_EMAIL, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "smm_admin")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "smm-admin-gateway")
	v.SetDefault("aes.key", "")
	v.SetDefault("admin.email", "")
	v.SetDefault("exchange.rate_service_url", "https://open.er-api.com/v6/latest/USD")
	v.SetDefault("exchange.platform_currency", "PKR")
	v.SetDefault("exchange.fallback_rate", 280.50)
	v.SetDefault("exchange.fee_buffer_percent", 0.0)
	v.SetDefault("exchange.cache_ttl", "1h")
	v.SetDefault("exchange.fetch_timeout", "10s")
	v.SetDefault("provider.timeout", "20s")
	v.SetDefault("provider.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.110 Safari/537.36")
	v.SetDefault("settlement.commission_rate", 0.05)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: SMM_DATABASE_HOST -> database.host
	v.SetEnvPrefix("SMM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required values. A failure here is a configuration error
// and the process must not start.
func (c *Config) Validate() error {
	if c.Admin.Email == "" {
		return fmt.Errorf("configuration error: admin.email is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("configuration error: jwt.secret is required")
	}
	if c.Exchange.FallbackRate <= 0 {
		return fmt.Errorf("configuration error: exchange.fallback_rate must be positive")
	}
	if c.Exchange.FeeBufferPercent < 0 {
		return fmt.Errorf("configuration error: exchange.fee_buffer_percent must not be negative")
	}
	if c.Exchange.PlatformCurrency == "" {
		return fmt.Errorf("configuration error: exchange.platform_currency is required")
	}
	if c.Settlement.CommissionRate < 0 || c.Settlement.CommissionRate >= 1 {
		return fmt.Errorf("configuration error: settlement.commission_rate must be in [0, 1)")
	}
	if c.Exchange.CacheTTL > rateCacheTTLCap {
		c.Exchange.CacheTTL = rateCacheTTLCap
	}
	return nil
}
