package memory

import (
	"sync"
	"time"

	"github.com/norafoods/storefront/internal/domain"
)

type profileRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Profile
}

// NewProfileRepository возвращает in-memory хранилище профилей.
func NewProfileRepository() domain.ProfileRepository {
	return &profileRepositoryInMemory{
		items: make(map[string]domain.Profile),
	}
}

func (r *profileRepositoryInMemory) Get(id string) (domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.items[id]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return profile, nil
}

// Upsert создаёт профиль при первом входе. Роль существующего профиля через
// upsert не меняется никогда: она назначается вне этого API.
func (r *profileRepositoryInMemory) Upsert(profile domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.items[profile.ID]; ok {
		profile.Role = current.Role
		profile.CreatedAt = current.CreatedAt
	} else {
		if profile.Role == "" {
			profile.Role = domain.RoleCustomer
		}
		if profile.CreatedAt.IsZero() {
			profile.CreatedAt = time.Now().UTC()
		}
	}
	r.items[profile.ID] = profile
	return nil
}

var _ domain.ProfileRepository = (*profileRepositoryInMemory)(nil)
