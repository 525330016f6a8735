package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	// ErrInvalidConfig возвращается, когда конфигурация не прошла проверку
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Database   DatabaseConfig   `toml:"database"`
	Server     ServerConfig     `toml:"server"`
	Booking    BookingConfig    `toml:"booking"`
	Redis      RedisConfig      `toml:"redis"`
	Cache      CacheConfig      `toml:"cache"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
	Kafka      KafkaConfig      `toml:"kafka"`
	SMTP       SMTPConfig       `toml:"smtp"`
	WhatsApp   WhatsAppConfig   `toml:"whatsapp"`
	Dispatcher DispatcherConfig `toml:"dispatcher"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
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
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// BookingConfig сетка слотов и окно по умолчанию
type BookingConfig struct {
	SlotStepMinutes int      `toml:"slot_step_minutes"`
	DefaultOpensAt  string   `toml:"default_opens_at"`
	DefaultClosesAt string   `toml:"default_closes_at"`
	DefaultClosed   []string `toml:"default_closed_days"`
	DefaultTimezone string   `toml:"default_timezone"`
}

// Location зона организаций без собственной timezone
func (b BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.DefaultTimezone)
}

// ClosedWeekdays дни недели, закрытые по умолчанию
func (b BookingConfig) ClosedWeekdays() ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(b.DefaultClosed))
	for _, name := range b.DefaultClosed {
		day, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidConfig, name)
		}
		days = append(days, day)
	}
	return days, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// RedisConfig подключение к Redis (кеш L2 и rate limit)
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Address  string `toml:"address"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// CacheConfig настройки кеша организаций
type CacheConfig struct {
	Prefix       string `toml:"prefix"`
	TTLSeconds   int    `toml:"ttl_seconds"`
	L1TTLSeconds int    `toml:"l1_ttl_seconds"`
	L1MaxCostMiB int64  `toml:"l1_max_cost_mib"`
}

// TTL время жизни записи в Redis
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// L1TTL время жизни записи в памяти процесса
func (c CacheConfig) L1TTL() time.Duration {
	return time.Duration(c.L1TTLSeconds) * time.Second
}

// RateLimitConfig ограничение публичной записи
type RateLimitConfig struct {
	Enabled       bool   `toml:"enabled"`
	Limit         int    `toml:"limit"`
	WindowSeconds int    `toml:"window_seconds"`
	Prefix        string `toml:"prefix"`
	FailOpen      bool   `toml:"fail_open"`
}

// Window длина окна
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// KafkaConfig публикация событий outbox
type KafkaConfig struct {
	Enabled             bool     `toml:"enabled"`
	Brokers             []string `toml:"brokers"`
	TopicPrefix         string   `toml:"topic_prefix"`
	PollIntervalSeconds int      `toml:"poll_interval_seconds"`
	BatchSize           int      `toml:"batch_size"`
}

// SMTPConfig отправка email
type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

// Configured true, если задан сервер
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.From != ""
}

// WhatsAppConfig шлюз Evolution API
type WhatsAppConfig struct {
	URL         string `toml:"url"`
	APIKey      string `toml:"api_key"`
	Instance    string `toml:"instance"`
	CountryCode string `toml:"country_code"`
	Timeout     int    `toml:"timeout"` // секунды
}

// Configured true, если задан шлюз
func (w WhatsAppConfig) Configured() bool {
	return w.URL != "" && w.APIKey != "" && w.Instance != ""
}

// DispatcherConfig фоновая рассылка уведомлений
type DispatcherConfig struct {
	Enabled             bool    `toml:"enabled"`
	PollIntervalSeconds int     `toml:"poll_interval_seconds"`
	BatchSize           int     `toml:"batch_size"`
	MaxAttempts         int     `toml:"max_attempts"`
	BackoffSeconds      int     `toml:"backoff_seconds"`
	RatePerSecond       float64 `toml:"rate_per_second"`
	Burst               int     `toml:"burst"`
}

// Load читает .env (если есть) и toml файл, применяет переменные окружения и значения по умолчанию
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv секреты и адреса из окружения перекрывают файл
func (c *Config) applyEnv() {
	overrideString(&c.Database.Host, "DB_HOST")
	overrideString(&c.Database.Password, "DB_PASSWORD")
	overrideString(&c.Redis.Address, "REDIS_ADDRESS")
	overrideString(&c.Redis.Password, "REDIS_PASSWORD")
	overrideString(&c.SMTP.Password, "SMTP_PASSWORD")
	overrideString(&c.WhatsApp.APIKey, "WHATSAPP_API_KEY")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = nil
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.Kafka.Brokers = append(c.Kafka.Brokers, b)
			}
		}
	}
}

func overrideString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) setDefaults() {
	setDefault(&c.Logs.Level, "info")
	setDefault(&c.Metrics.ServiceName, "appointment_service")
	setDefault(&c.Metrics.Path, "/metrics")

	setDefault(&c.Database.Host, "localhost")
	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.SSLMode, "disable")
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)

	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 10)
	setDefault(&c.Server.WriteTimeout, 10)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 15)

	setDefault(&c.Booking.SlotStepMinutes, 30)
	setDefault(&c.Booking.DefaultOpensAt, "09:00")
	setDefault(&c.Booking.DefaultClosesAt, "18:00")
	setDefault(&c.Booking.DefaultTimezone, "UTC")
	if c.Booking.DefaultClosed == nil {
		c.Booking.DefaultClosed = []string{"sunday"}
	}

	setDefault(&c.Redis.Address, "localhost:6379")
	setDefault(&c.Cache.Prefix, "appointments")
	setDefault(&c.Cache.TTLSeconds, 60)
	setDefault(&c.Cache.L1TTLSeconds, 10)
	setDefault(&c.Cache.L1MaxCostMiB, int64(32))

	setDefault(&c.RateLimit.Limit, 30)
	setDefault(&c.RateLimit.WindowSeconds, 60)
	setDefault(&c.RateLimit.Prefix, "rl:public")

	setDefault(&c.Kafka.TopicPrefix, "appointments")
	setDefault(&c.Kafka.PollIntervalSeconds, 2)
	setDefault(&c.Kafka.BatchSize, 100)

	setDefault(&c.WhatsApp.CountryCode, "55")
	setDefault(&c.WhatsApp.Timeout, 10)

	setDefault(&c.Dispatcher.PollIntervalSeconds, 30)
	setDefault(&c.Dispatcher.BatchSize, 10)
	setDefault(&c.Dispatcher.MaxAttempts, 3)
	setDefault(&c.Dispatcher.BackoffSeconds, 60)
	setDefault(&c.Dispatcher.RatePerSecond, 5.0)
	setDefault(&c.Dispatcher.Burst, 5)
}

func setDefault[T comparable](dst *T, value T) {
	var zero T
	if *dst == zero {
		*dst = value
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Database.DBName == "" {
		return fmt.Errorf("%w: database.dbname is required", ErrInvalidConfig)
	}
	if c.Database.User == "" {
		return fmt.Errorf("%w: database.user is required", ErrInvalidConfig)
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d is out of range", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Booking.SlotStepMinutes <= 0 || c.Booking.SlotStepMinutes > 24*60 {
		return fmt.Errorf("%w: booking.slot_step_minutes must be in (0, 1440]", ErrInvalidConfig)
	}
	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("%w: booking.default_timezone: %v", ErrInvalidConfig, err)
	}
	for _, t := range []string{c.Booking.DefaultOpensAt, c.Booking.DefaultClosesAt} {
		if err := types.TimeString(t).Validate(); err != nil {
			return fmt.Errorf("%w: booking default window: %v", ErrInvalidConfig, err)
		}
	}
	if _, err := c.Booking.ClosedWeekdays(); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("%w: kafka.brokers is required when kafka is enabled", ErrInvalidConfig)
	}
	if c.RateLimit.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("%w: rate_limit requires redis", ErrInvalidConfig)
	}
	if c.Dispatcher.MaxAttempts < 1 {
		return fmt.Errorf("%w: dispatcher.max_attempts must be positive", ErrInvalidConfig)
	}
	return nil
}
