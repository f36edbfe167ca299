package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/auth"
	"github.com/norafoods/storefront/internal/cart"
	"github.com/norafoods/storefront/internal/checkout"
	"github.com/norafoods/storefront/internal/domain"
	"github.com/norafoods/storefront/internal/health"
	"github.com/norafoods/storefront/internal/messaging/kafka"
	"github.com/norafoods/storefront/internal/messaging/whatsapp"
	"github.com/norafoods/storefront/internal/metrics"
	"github.com/norafoods/storefront/internal/objectstore"
	"github.com/norafoods/storefront/internal/service/idempotency"
	"github.com/norafoods/storefront/internal/storage/memory"
	"github.com/norafoods/storefront/internal/storage/postgres"
	redisstore "github.com/norafoods/storefront/internal/storage/redis"
	"github.com/norafoods/storefront/internal/version"
)

// Dependencies содержит собранные зависимости приложения.
type Dependencies struct {
	Products    domain.ProductRepository
	Stock       domain.StockService
	Categories  domain.CategoryRepository
	Orders      domain.OrderRepository
	Addresses   domain.AddressRepository
	Profiles    domain.ProfileRepository
	Timeline    domain.TimelineRepository
	Idempotency domain.IdempotencyRepository
	Images      domain.ObjectStorage

	Carts     *cart.Store
	Checkouts *checkout.Service
	Auth      auth.Provider
	Metrics   *metrics.CheckoutMetrics
	Messenger *whatsapp.Builder
	Producer  *kafka.Producer
	Cleanup   *idempotency.CleanupWorker
	Health    *health.Handler
	Logger    *log.Entry

	pg    *postgres.Store
	redis *goredis.Client
}

// NewDependencies собирает зависимости по конфигурации. Пустой Postgres DSN
// включает in-memory-хранилище, пустой адрес Redis — корзины в памяти,
// пустой список брокеров — работу без Kafka.
// NOTE: auth-провайдер здесь — мок для разработки; в production его место
// занимает клиент реального identity-сервиса.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Logger:  logger,
		Metrics: metrics.NewCheckoutMetrics(),
		Auth:    auth.NewMockProvider(),
		Messenger: whatsapp.NewBuilder(
			cfg.Store.Name,
			cfg.Store.WhatsAppTo,
			cfg.Store.Currency,
			cfg.Store.DeliveryNote,
		),
	}
	v, _, _ := version.Info()
	deps.Health = health.NewHandler(v)

	var cartRepo domain.CartRepository

	if cfg.Postgres.DSN != "" {
		store, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		deps.pg = store

		if cfg.Postgres.Migrate {
			if err := store.EnsureSchema(ctx); err != nil {
				store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
		}

		products := postgres.NewProductRepository(store)
		deps.Products = products
		deps.Stock = products
		deps.Categories = postgres.NewCategoryRepository(store)
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Addresses = postgres.NewAddressRepository(store)
		deps.Profiles = postgres.NewProfileRepository(store)
		deps.Timeline = postgres.NewTimelineRepository(store)
		deps.Idempotency = postgres.NewIdempotencyRepository(store)

		deps.Health.Register("postgres", true, store.Ping)
		logger.Info("хранилище: postgres")
	} else {
		products := memory.NewProductRepository()
		deps.Products = products
		deps.Stock = products
		deps.Categories = memory.NewCategoryRepository()
		deps.Orders = memory.NewOrderRepository()
		deps.Addresses = memory.NewAddressRepository()
		deps.Profiles = memory.NewProfileRepository()
		deps.Timeline = memory.NewTimelineRepository()
		deps.Idempotency = memory.NewIdempotencyRepository()
		logger.Warn("хранилище: in-memory, данные не переживут перезапуск")
	}

	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			deps.close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		deps.redis = client
		cartRepo = redisstore.NewCartRepository(client, cfg.Redis.CartTTL)
		deps.Health.Register("redis", true, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		logger.WithField("addr", cfg.Redis.Addr).Info("корзины: redis")
	} else {
		cartRepo = memory.NewCartRepository()
		logger.Info("корзины: in-memory")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			logger.WithError(err).Warn("kafka producer недоступен, события отключены")
		} else {
			deps.Producer = producer
			logger.WithField("brokers", cfg.Kafka.Brokers).Info("kafka producer инициализирован")
		}
	}

	images, err := objectstore.NewDiskStorage(cfg.Images.Dir, cfg.Images.BaseURL)
	if err != nil {
		deps.close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	deps.Images = images

	deps.Carts = cart.NewStore(cartRepo, logger.WithField("component", "cart"))
	deps.Checkouts = checkout.NewService(checkout.Deps{
		Carts:     deps.Carts,
		Addresses: deps.Addresses,
		Stock:     deps.Stock,
		Orders:    deps.Orders,
		Timeline:  deps.Timeline,
		Messenger: deps.Messenger,
		Metrics:   deps.Metrics,
		Producer:  deps.Producer,
		Logger:    logger.WithField("component", "checkout"),
	})

	deps.Cleanup = idempotency.NewCleanupWorker(
		deps.Idempotency,
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithLogger(logger.WithField("component", "idempotency_cleanup")),
	)

	return deps, nil
}

func (d *Dependencies) close() {
	if d.Producer != nil {
		if err := d.Producer.Close(); err != nil {
			d.Logger.WithError(err).Warn("ошибка при закрытии kafka producer")
		}
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.Logger.WithError(err).Warn("ошибка при закрытии redis")
		}
	}
	if d.pg != nil {
		if err := d.pg.Close(); err != nil {
			d.Logger.WithError(err).Warn("ошибка при закрытии postgres")
		}
	}
}

// Close освобождает внешние подключения в обратном порядке инициализации.
func (d *Dependencies) Close() {
	d.close()
}
