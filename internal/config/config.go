// Package config предоставляет структуры и функции для загрузки конфигурации сервиса
// из переменных окружения, .env-файла и (опционально) YAML-файла по пути CONFIG_PATH.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultPublicBaseURL используется для callback-ссылки, если не задан ни PUBLIC_BASE_URL,
// ни адрес, выданный платформой хостинга.
const DefaultPublicBaseURL = "http://localhost:3000"

// Драйверы хранилища подписчиков.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env             string `yaml:"env" env:"APP_ENV" env-default:"local"`
	PublicBaseURL   string `yaml:"public_base_url" env:"PUBLIC_BASE_URL"`
	PlatformURL     string `yaml:"platform_url" env:"RENDER_EXTERNAL_URL"`
	HTTPServer      `yaml:"http_server"`
	Paystack        `yaml:"paystack"`
	Subscription    `yaml:"subscription"`
	Storage         `yaml:"storage"`
	RedisConnection `yaml:"redis_connection"`
	RabbitMQ        `yaml:"rabbitmq"`
	GRPC            `yaml:"grpc"`
}

// HTTPServer структура для настройки HTTP-сервера.
type HTTPServer struct {
	Port               string        `yaml:"port" env:"PORT" env-default:"3000"`
	TimeoutHTTP        time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"20s"`
	IdleTimeout        time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	RateLimitRPS       float64       `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS" env-default:"5"`
	RateLimitBurst     int           `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST" env-default:"10"`
}

// Paystack структура для настройки клиента платёжного шлюза.
type Paystack struct {
	SecretKey      string        `yaml:"secret_key" env:"PAYSTACK_SECRET_KEY"`
	BaseURL        string        `yaml:"base_url" env:"PAYSTACK_BASE_URL" env-default:"https://api.paystack.co"`
	GatewayTimeout time.Duration `yaml:"timeout" env:"PAYSTACK_TIMEOUT" env-default:"15s"`
	Currency       string        `yaml:"currency" env:"PAYSTACK_CURRENCY"`
}

// Subscription структура с параметрами выдаваемой подписки.
type Subscription struct {
	TTL           time.Duration `yaml:"ttl" env:"SUBSCRIPTION_TTL" env-default:"720h"`
	EnforceExpiry bool          `yaml:"enforce_expiry" env:"SUBSCRIPTION_ENFORCE_EXPIRY" env-default:"false"`
}

// Storage структура для выбора и настройки хранилища подписчиков.
type Storage struct {
	Driver                  string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"DATABASE_URL"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDR"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"3s"`
}

// RabbitMQ структура для публикации событий активации подписки.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQExchange   string        `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"subscriptions"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env:"RABBITMQ_MAX_RETRIES" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// GRPC структура для gRPC health-сервера. Пустой адрес отключает сервер.
type GRPC struct {
	HealthAddress string `yaml:"health_address" env:"GRPC_HEALTH_ADDRESS"`
}

// MustLoad загружает конфиг и завершает процесс, если это не удалось.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load загружает .env (если он есть), затем YAML-файл из CONFIG_PATH (если задан)
// и переменные окружения, которые перекрывают значения из файла.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	configPath := os.Getenv("CONFIG_PATH")
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("file: %s - does not exist", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, err
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Driver {
	case StorageMemory:
	case StorageRedis:
		if c.AddressRedis == "" {
			return errors.New("REDIS_ADDR is required for redis storage")
		}
	case StoragePostgres:
		if c.StorageConnectionString == "" {
			return errors.New("DATABASE_URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
	if c.TTL <= 0 {
		return errors.New("subscription ttl must be positive")
	}
	return nil
}

// AddressHTTP возвращает адрес, на котором слушает HTTP-сервер.
func (c *Config) AddressHTTP() string {
	return ":" + c.Port
}

// CallbackBaseURL возвращает публичный адрес сервиса для callback-ссылки шлюза:
// PUBLIC_BASE_URL, затем адрес платформы, затем DefaultPublicBaseURL.
func (c *Config) CallbackBaseURL() string {
	for _, u := range []string{c.PublicBaseURL, c.PlatformURL} {
		if u = strings.TrimSpace(u); u != "" {
			return strings.TrimRight(u, "/")
		}
	}
	return DefaultPublicBaseURL
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"CallbackBaseURL: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Paystack:\n"+
			"  BaseURL: %s\n"+
			"  SecretKey set: %t\n"+
			"  Timeout: %s\n"+
			"Subscription:\n"+
			"  TTL: %s\n"+
			"  EnforceExpiry: %t\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"RabbitMQ enabled: %t\n"+
			"GRPC health: %s\n",
		c.Env,
		c.CallbackBaseURL(),
		c.AddressHTTP(),
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.BaseURL,
		c.SecretKey != "",
		c.GatewayTimeout,
		c.TTL,
		c.EnforceExpiry,
		c.Driver,
		c.RabbitMQURL != "",
		c.HealthAddress,
	)
}
