package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config — настройки запуска витрины. Источники в порядке приоритета:
// значения по умолчанию, затем YAML-файл, затем переменные окружения NORA_*.
type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Store    StoreConfig    `yaml:"store"`
	Images   ImagesConfig   `yaml:"images"`

	IdempotencyCleanupInterval time.Duration `yaml:"idempotency_cleanup_interval"`
}

// PostgresConfig — подключение к PostgreSQL. Пустой DSN означает
// in-memory-хранилище (dev и тесты).
type PostgresConfig struct {
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// RedisConfig — подключение к Redis для снапшотов корзин.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CartTTL  time.Duration `yaml:"cart_ttl"`
}

// KafkaConfig — брокеры для событий заказов. Пустой список выключает продюсер.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

// StoreConfig — реквизиты магазина для WhatsApp-сообщения.
type StoreConfig struct {
	Name         string `yaml:"name"`
	WhatsAppTo   string `yaml:"whatsapp_to"`
	Currency     string `yaml:"currency"`
	DeliveryNote string `yaml:"delivery_note"`
}

// ImagesConfig — каталог и базовый URL для картинок товаров.
type ImagesConfig struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних
// зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
		Redis: RedisConfig{
			CartTTL: 30 * 24 * time.Hour,
		},
		Store: StoreConfig{
			Name:         "Nora Foods",
			WhatsAppTo:   "917306874286",
			Currency:     "₹",
			DeliveryNote: "To be calculated (₹70/kg)",
		},
		Images: ImagesConfig{
			Dir:     "data/images",
			BaseURL: "/static",
		},
		IdempotencyCleanupInterval: 15 * time.Minute,
	}
}

// LoadConfig собирает конфигурацию: defaults → YAML (если path не пуст) →
// переменные окружения.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.HTTPAddr, "NORA_HTTP_ADDR")
	setString(&c.MetricsAddr, "NORA_METRICS_ADDR")
	setString(&c.Postgres.DSN, "NORA_POSTGRES_DSN")
	setString(&c.Redis.Addr, "NORA_REDIS_ADDR")
	setString(&c.Redis.Password, "NORA_REDIS_PASSWORD")
	setString(&c.Store.Name, "NORA_STORE_NAME")
	setString(&c.Store.WhatsAppTo, "NORA_WHATSAPP_TO")
	setString(&c.Store.Currency, "NORA_CURRENCY")
	setString(&c.Store.DeliveryNote, "NORA_DELIVERY_NOTE")
	setString(&c.Images.Dir, "NORA_IMAGES_DIR")
	setString(&c.Images.BaseURL, "NORA_IMAGES_BASE_URL")

	if v, ok := os.LookupEnv("NORA_KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.Kafka.Brokers = append(c.Kafka.Brokers, b)
			}
		}
	}
	if v, ok := os.LookupEnv("NORA_POSTGRES_MIGRATE"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse NORA_POSTGRES_MIGRATE: %w", err)
		}
		c.Postgres.Migrate = parsed
	}
	if v, ok := os.LookupEnv("NORA_REDIS_DB"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse NORA_REDIS_DB: %w", err)
		}
		c.Redis.DB = parsed
	}
	if v, ok := os.LookupEnv("NORA_CART_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse NORA_CART_TTL: %w", err)
		}
		c.Redis.CartTTL = parsed
	}
	if v, ok := os.LookupEnv("NORA_IDEMPOTENCY_CLEANUP_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse NORA_IDEMPOTENCY_CLEANUP_INTERVAL: %w", err)
		}
		c.IdempotencyCleanupInterval = parsed
	}
	return nil
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok {
		*dst = v
	}
}
