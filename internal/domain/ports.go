package domain

import (
	"context"
	"io"
	"time"
)

// StockAdjustment — пара (товар, количество) для списания или возврата остатков.
type StockAdjustment struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

// StockService — авторитетная операция над остатками. Decrement обязан быть
// атомарным по всем позициям: либо списываются все, либо ни одной, и тогда
// возвращается ErrInsufficientStock. Restore — компенсация для отката.
type StockService interface {
	Decrement(adjustments []StockAdjustment) error
	Restore(adjustments []StockAdjustment) error
}

// CartRepository сохраняет снапшот корзины по идентификатору сессии.
// Снапшот пишется целиком после каждой мутации, чтобы корзина переживала
// перезагрузку страницы.
type CartRepository interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, cart Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// ObjectStorage — загрузка картинок товаров и выдача публичных URL.
type ObjectStorage interface {
	Upload(ctx context.Context, path string, data io.Reader) error
	PublicURL(path string) string
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}
