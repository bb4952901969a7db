// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Бэкенды хранилища токенов.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Ops      OpsConfig     `yaml:"ops"`
	Links    LinksConfig   `yaml:"links"`
	Store    StoreConfig   `yaml:"store"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	S3       S3Config      `yaml:"s3"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки публичного HTTP-сервера (issue + content).
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// OpsConfig — сетевые настройки служебного HTTP-сервера (livez/healthz/metrics).
type OpsConfig struct {
	Host string `yaml:"host" env:"OPS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"OPS_PORT" env-default:"9090"`
}

// Addr возвращает адрес в формате host:port.
func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Addr возвращает адрес в формате host:port.
func (c OpsConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// LinksConfig содержит параметры выпуска и погашения одноразовых ссылок.
type LinksConfig struct {
	// Domain — домен, на котором выпускаются подписанные ссылки.
	Domain string `yaml:"domain" env:"LINKS_DOMAIN" env-required:"true"`
	// ContentPath — префикс пути защищаемого контента в подписанных ссылках.
	ContentPath string `yaml:"content_path" env:"LINKS_CONTENT_PATH" env-default:"/content"`
	// FallbackURL — адрес редиректа при отказе в погашении (reauth-страница).
	FallbackURL string `yaml:"fallback_url" env:"LINKS_FALLBACK_URL" env-required:"true"`
	// Secret — ключ подписи ссылок (HMAC/JWT).
	Secret string `yaml:"secret" env:"LINKS_SECRET" env-required:"true"`
	// Scheme — схема подписи: hmac | jwt.
	Scheme string `yaml:"scheme" env:"LINKS_SCHEME" env-default:"hmac"`
	// Issuer — издатель для схемы jwt.
	Issuer string `yaml:"issuer" env:"LINKS_ISSUER" env-default:"links-service"`
	// MaxTTL — потолок времени жизни ссылки; запрошенное сверх него урезается.
	MaxTTL time.Duration `yaml:"max_ttl" env:"LINKS_MAX_TTL" env-default:"24h"`
	// ReapInterval — период фоновой очистки просроченных токенов.
	ReapInterval time.Duration `yaml:"reap_interval" env:"LINKS_REAP_INTERVAL" env-default:"30m"`
}

// StoreConfig выбирает бэкенд хранилища токенов.
type StoreConfig struct {
	Backend string `yaml:"backend" env:"STORE_BACKEND" env-default:"postgres"`
}

// DBConfig — настройки подключения к базе данных.
// DatabaseURL обязателен при store.backend=postgres (проверяется в Validate).
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL"`
}

// RedisConfig — настройки подключения к Redis.
// RedisURL обязателен при store.backend=redis (проверяется в Validate).
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
}

// S3Config — настройки источника защищаемого контента (MinIO/S3).
type S3Config struct {
	Endpoint     string `yaml:"endpoint" env:"S3_ENDPOINT" env-required:"true"`
	Bucket       string `yaml:"bucket" env:"S3_BUCKET" env-required:"true"`
	RootUser     string `yaml:"root_user" env:"S3_ROOT_USER" env-required:"true"`
	RootPassword string `yaml:"root_password" env:"S3_ROOT_PASSWORD" env-required:"true"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"5s"`
}

// Validate проверяет согласованность значений, которые cleanenv не выразит
// тегами: обязательность URL хранилища зависит от выбранного бэкенда.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StorePostgres:
		if c.DB.DatabaseURL == "" {
			return fmt.Errorf("db.db_url is required for store.backend=postgres")
		}
	case StoreRedis:
		if c.Redis.RedisURL == "" {
			return fmt.Errorf("redis.redis_url is required for store.backend=redis")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}

	return nil
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %q: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}

		if err := c.Validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}

		if err := c.Validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
