package memory

import (
	"sort"
	"sync"

	"github.com/norafoods/storefront/internal/domain"
)

type categoryRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Category
}

// NewCategoryRepository возвращает in-memory справочник категорий.
func NewCategoryRepository() domain.CategoryRepository {
	return &categoryRepositoryInMemory{
		items: make(map[string]domain.Category),
	}
}

func (r *categoryRepositoryInMemory) Create(category domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Name == category.Name {
			return domain.ErrCategoryExists
		}
	}
	r.items[category.ID] = category
	return nil
}

func (r *categoryRepositoryInMemory) List() ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.items))
	for _, category := range r.items {
		result = append(result, category)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

func (r *categoryRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.items, id)
	return nil
}

var _ domain.CategoryRepository = (*categoryRepositoryInMemory)(nil)
