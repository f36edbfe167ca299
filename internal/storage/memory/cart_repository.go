package memory

import (
	"context"
	"sync"

	"github.com/norafoods/storefront/internal/domain"
)

// cartRepositoryInMemory хранит снапшоты корзин по идентификатору сессии.
type cartRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Cart
}

// NewCartRepository возвращает in-memory хранилище корзин для разработки и тестов.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		items: make(map[string]domain.Cart),
	}
}

func (r *cartRepositoryInMemory) Load(_ context.Context, sessionID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.items[sessionID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cloneCart(cart), nil
}

func (r *cartRepositoryInMemory) Save(_ context.Context, sessionID string, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[sessionID] = cloneCart(cart)
	return nil
}

func (r *cartRepositoryInMemory) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[sessionID]; !ok {
		return domain.ErrCartNotFound
	}
	delete(r.items, sessionID)
	return nil
}

// cloneCart копирует снапшот, чтобы избежать непредсказуемых мутаций извне.
func cloneCart(src domain.Cart) domain.Cart {
	dst := domain.Cart{}
	if len(src.Lines) > 0 {
		dst.Lines = append([]domain.CartLine(nil), src.Lines...)
	}
	return dst
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
