// Пакет cart — контейнер состояния корзины с явными load/save hooks.
// Контейнер создаётся явно и внедряется зависимостью: никакого глобального
// синглтона, поэтому несколько сессий могут жить параллельно.
package cart

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/domain"
)

// Store загружает снапшот корзины сессии, применяет мутацию и сохраняет
// результат целиком. Сетевых вызовов к каталогу отсюда нет: потолок остатка
// в строках — последний, который видел вызывающий код.
type Store struct {
	repo   domain.CartRepository
	logger *log.Entry
}

// NewStore создаёт контейнер поверх переданного хранилища снапшотов.
func NewStore(repo domain.CartRepository, logger *log.Entry) *Store {
	if logger == nil {
		logger = log.WithField("component", "cart-store")
	}
	return &Store{repo: repo, logger: logger}
}

// Get возвращает текущую корзину сессии; отсутствие снапшота — пустая корзина.
func (s *Store) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	cart, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return domain.Cart{}, nil
		}
		return domain.Cart{}, err
	}
	return cart, nil
}

// AddItem добавляет товар в корзину сессии по правилам domain.Cart.AddItem.
// Рекомендательный отказ (нет остатка, потолок) возвращается как есть и
// не сохраняет ничего.
func (s *Store) AddItem(ctx context.Context, sessionID string, item domain.CartLine) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		return cart.AddItem(item)
	})
}

// UpdateQuantity выставляет количество строки; ноль удаляет строку.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int32) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		return cart.UpdateQuantity(productID, quantity)
	})
}

// RemoveItem удаляет строку безусловно.
func (s *Store) RemoveItem(ctx context.Context, sessionID, productID string) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(cart *domain.Cart) error {
		cart.RemoveItem(productID)
		return nil
	})
}

// Clear опустошает корзину и удаляет снапшот.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		return err
	}
	return nil
}

// mutate — общий цикл load → изменить → save. Сохраняется только успешная
// мутация; рекомендательные отказы оставляют снапшот нетронутым.
func (s *Store) mutate(ctx context.Context, sessionID string, fn func(cart *domain.Cart) error) (domain.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	if err := fn(&cart); err != nil {
		if domain.IsAdvisory(err) {
			s.logger.WithFields(log.Fields{
				"session_id": sessionID,
				"reason":     err.Error(),
			}).Debug("cart mutation rejected")
		}
		return cart, err
	}

	if cart.IsEmpty() {
		// Пустую корзину не храним: удаление снапшота эквивалентно clearCart.
		if err := s.Clear(ctx, sessionID); err != nil {
			return cart, err
		}
		return cart, nil
	}

	if err := s.repo.Save(ctx, sessionID, cart); err != nil {
		return cart, err
	}
	return cart, nil
}
