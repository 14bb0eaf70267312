package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Режимы блокировки аллокатора
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig      `toml:"server"`
	Database      DatabaseConfig    `toml:"database"`
	Logs          LogsConfig        `toml:"logs"`
	Metrics       MetricsConfig     `toml:"metrics"`
	Redis         RedisConfig       `toml:"redis"`
	Booking       BookingConfig     `toml:"booking"`
	Pricing       PricingConfig     `toml:"pricing"`
	SellerService IntegrationConfig `toml:"seller_service"`
	UserService   IntegrationConfig `toml:"user_service"`
	RateLimit     RateLimitConfig   `toml:"rate_limit"`
}

// ServerConfig настройки HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	MigrateOnStart  bool   `toml:"migrate_on_start"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RedisConfig настройки Redis (кэш конфигурации партнёров и распределённая блокировка)
type RedisConfig struct {
	Enabled         bool   `toml:"enabled"`
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
}

// BookingConfig параметры движка бронирования
type BookingConfig struct {
	Timezone                string `toml:"timezone"`
	CancellationWindowHours int    `toml:"cancellation_window_hours"`
	LockBackend             string `toml:"lock_backend"`
	LockTimeoutMs           int    `toml:"lock_timeout_ms"`
	LockLeaseMs             int    `toml:"lock_lease_ms"`
	DBLockTimeoutMs         int    `toml:"db_lock_timeout_ms"`
	SerializationRetries    int    `toml:"serialization_retries"`
	AllocationMaxAttempts   int    `toml:"allocation_max_attempts"`
}

// PricingConfig платформенные проценты
type PricingConfig struct {
	CustomerCommissionPercent float64 `toml:"customer_commission_percent"`
	PartnerCommissionPercent  float64 `toml:"partner_commission_percent"`
	PremiumDiscountPercent    float64 `toml:"premium_discount_percent"`
}

// IntegrationConfig внешний сервис, timeout в секундах
type IntegrationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// RateLimitConfig ограничение частоты изменяющих запросов на клиента
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Load читает .env (если есть), затем TOML файл с подстановкой ${VAR}
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaults()
	if _, err := toml.Decode(os.ExpandEnv(string(data)), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{Path: "/metrics", ServiceName: "booking-engine"},
		Redis:   RedisConfig{CacheTTLSeconds: 300},
		Booking: BookingConfig{
			Timezone:                "UTC",
			CancellationWindowHours: domain.DefaultCancellationWindowHours,
			LockBackend:             LockBackendMemory,
			LockTimeoutMs:           2000,
			LockLeaseMs:             10000,
			DBLockTimeoutMs:         2000,
			SerializationRetries:    3,
			AllocationMaxAttempts:   3,
		},
		Pricing: PricingConfig{
			CustomerCommissionPercent: domain.DefaultCustomerCommissionPercent,
			PartnerCommissionPercent:  domain.DefaultPartnerCommissionPercent,
			PremiumDiscountPercent:    domain.DefaultPremiumDiscountPercent,
		},
		SellerService: IntegrationConfig{Timeout: 5},
		UserService:   IntegrationConfig{Timeout: 5},
		RateLimit:     RateLimitConfig{RequestsPerSecond: 10, Burst: 20},
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("database.host and database.dbname are required")
	}
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("invalid booking.timezone %q: %w", c.Booking.Timezone, err)
	}
	if c.Booking.CancellationWindowHours < 0 {
		return errors.New("booking.cancellation_window_hours must be >= 0")
	}
	switch c.Booking.LockBackend {
	case LockBackendMemory:
	case LockBackendRedis:
		if !c.Redis.Enabled {
			return errors.New("booking.lock_backend = redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("unknown booking.lock_backend %q", c.Booking.LockBackend)
	}
	if c.Booking.LockTimeoutMs <= 0 || c.Booking.AllocationMaxAttempts <= 0 || c.Booking.SerializationRetries < 0 {
		return errors.New("booking lock timeout and allocation attempts must be positive")
	}
	for name, pct := range map[string]float64{
		"customer_commission_percent": c.Pricing.CustomerCommissionPercent,
		"partner_commission_percent":  c.Pricing.PartnerCommissionPercent,
		"premium_discount_percent":    c.Pricing.PremiumDiscountPercent,
	} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("pricing.%s must be in [0, 100]", name)
		}
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate_limit requires positive requests_per_second and burst")
	}
	return nil
}

// DSN строка подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Location часовой пояс движка. Вызывается после Validate.
func (b BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CacheTTL время жизни записей кэша
func (r RedisConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}
