package memory

import (
	"sort"
	"sync"

	"github.com/norafoods/storefront/internal/domain"
)

// ProductRepository — in-memory реализация каталога и операций над остатками.
// Один мьютекс на каталог делает Decrement атомарным по всем позициям.
type ProductRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Product
	slugs map[string]string
}

// NewProductRepository возвращает in-memory каталог для локальной разработки и тестов.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		items: make(map[string]domain.Product),
		slugs: make(map[string]string),
	}
}

// Create сохраняет новый товар, если ID и slug ещё не заняты.
func (r *ProductRepository) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrProductExists
	}
	if _, exists := r.slugs[product.Slug]; exists {
		return domain.ErrProductExists
	}
	r.items[product.ID] = product
	r.slugs[product.Slug] = product.ID
	return nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *ProductRepository) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// GetBySlug возвращает товар по slug.
func (r *ProductRepository) GetBySlug(slug string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.slugs[slug]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return r.items[id], nil
}

// List возвращает товары по фильтру, отсортированные по имени для стабильной витрины.
func (r *ProductRepository) List(filter domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.BestsellersOnly && !product.Bestseller {
			continue
		}
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Update перезаписывает карточку товара.
func (r *ProductRepository) Update(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if current.Slug != product.Slug {
		if _, taken := r.slugs[product.Slug]; taken {
			return domain.ErrProductExists
		}
		delete(r.slugs, current.Slug)
		r.slugs[product.Slug] = product.ID
	}
	r.items[product.ID] = product
	return nil
}

// Delete удаляет товар.
func (r *ProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	delete(r.items, id)
	delete(r.slugs, product.Slug)
	return nil
}

// SetBestsellers снимает флаг со всех товаров и выставляет переданным.
func (r *ProductRepository) SetBestsellers(ids []string) error {
	if len(ids) > domain.BestsellerSlots {
		return domain.ErrBestsellerLimit
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.items[id]; !ok {
			return domain.ErrProductNotFound
		}
	}

	for id, product := range r.items {
		product.Bestseller = false
		r.items[id] = product
	}
	for _, id := range ids {
		product := r.items[id]
		product.Bestseller = true
		r.items[id] = product
	}
	return nil
}

// Decrement атомарно списывает остатки по всем позициям заявки: при нехватке
// хотя бы одной позиции не списывается ничего и возвращается ErrInsufficientStock.
func (r *ProductRepository) Decrement(adjustments []domain.StockAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Сначала проверяем всю заявку, потом применяем: частичных списаний не бывает.
	for _, adj := range adjustments {
		product, ok := r.items[adj.ProductID]
		if !ok {
			return domain.ErrInsufficientStock
		}
		if adj.Quantity <= 0 || product.Stock < adj.Quantity {
			return domain.ErrInsufficientStock
		}
	}

	for _, adj := range adjustments {
		product := r.items[adj.ProductID]
		product.Stock -= adj.Quantity
		r.items[adj.ProductID] = product
	}
	return nil
}

// Restore возвращает списанные остатки; компенсация неудачного оформления.
func (r *ProductRepository) Restore(adjustments []domain.StockAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, adj := range adjustments {
		product, ok := r.items[adj.ProductID]
		if !ok {
			continue
		}
		product.Stock += adj.Quantity
		r.items[adj.ProductID] = product
	}
	return nil
}

var (
	_ domain.ProductRepository = (*ProductRepository)(nil)
	_ domain.StockService      = (*ProductRepository)(nil)
)
