// Пакет redis хранит снапшоты корзин между запросами. Корзина переживает
// перезапуск процесса и делится между репликами витрины.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/norafoods/storefront/internal/domain"
)

const defaultCartTTL = 30 * 24 * time.Hour

// CartRepository — реализация domain.CartRepository поверх redis.
// Снапшот корзины хранится JSON-значением с TTL: брошенные корзины
// исчезают сами.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository создаёт репозиторий корзин. ttl <= 0 включает значение
// по умолчанию.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &CartRepository{client: client, ttl: ttl}
}

// Load читает снапшот корзины сессии.
func (r *CartRepository) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("unmarshal cart snapshot: %w", err)
	}
	return cart, nil
}

// Save перезаписывает снапшот корзины и продлевает TTL.
func (r *CartRepository) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

// Delete убирает снапшот корзины.
func (r *CartRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

var _ domain.CartRepository = (*CartRepository)(nil)
