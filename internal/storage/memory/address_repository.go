package memory

import (
	"sort"
	"sync"

	"github.com/norafoods/storefront/internal/domain"
)

type addressRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Address
}

// NewAddressRepository возвращает in-memory адресную книгу.
func NewAddressRepository() domain.AddressRepository {
	return &addressRepositoryInMemory{
		items: make(map[string]domain.Address),
	}
}

func (r *addressRepositoryInMemory) Create(address domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[address.ID] = address
	return nil
}

// Get возвращает адрес только его владельцу.
func (r *addressRepositoryInMemory) Get(id, customerID string) (domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	address, ok := r.items[id]
	if !ok || address.CustomerID != customerID {
		return domain.Address{}, domain.ErrAddressNotFound
	}
	return address, nil
}

func (r *addressRepositoryInMemory) ListByCustomer(customerID string) ([]domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Address, 0)
	for _, address := range r.items {
		if address.CustomerID == customerID {
			result = append(result, address)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (r *addressRepositoryInMemory) Update(address domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[address.ID]
	if !ok || current.CustomerID != address.CustomerID {
		return domain.ErrAddressNotFound
	}
	r.items[address.ID] = address
	return nil
}

func (r *addressRepositoryInMemory) Delete(id, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok || current.CustomerID != customerID {
		return domain.ErrAddressNotFound
	}
	delete(r.items, id)
	return nil
}

var _ domain.AddressRepository = (*addressRepositoryInMemory)(nil)
