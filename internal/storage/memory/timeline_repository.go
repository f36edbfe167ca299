package memory

import (
	"sync"

	"github.com/norafoods/storefront/internal/domain"
)

type timelineRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string][]domain.TimelineEvent
}

// NewTimelineRepository возвращает in-memory историю событий заказа.
func NewTimelineRepository() domain.TimelineRepository {
	return &timelineRepositoryInMemory{
		items: make(map[string][]domain.TimelineEvent),
	}
}

func (r *timelineRepositoryInMemory) Append(event domain.TimelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[event.OrderID] = append(r.items[event.OrderID], event)
	return nil
}

func (r *timelineRepositoryInMemory) List(orderID string) ([]domain.TimelineEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.items[orderID]
	return append([]domain.TimelineEvent(nil), events...), nil
}

var _ domain.TimelineRepository = (*timelineRepositoryInMemory)(nil)
