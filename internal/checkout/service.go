package checkout

import "sync"

// Service раздаёт последовательности оформления по сессиям. Несколько
// конкурентных покупателей получают независимые последовательности; повторное
// обращение той же сессии возвращает уже начатую.
type Service struct {
	mu         sync.Mutex
	sequencers map[string]*Sequencer
	deps       Deps
}

// NewService создаёт реестр последовательностей с общими зависимостями.
func NewService(deps Deps) *Service {
	return &Service{
		sequencers: make(map[string]*Sequencer),
		deps:       deps,
	}
}

// Begin возвращает последовательность для сессии, создавая её при первом
// обращении. Завершённая последовательность заменяется новой, чтобы покупатель
// мог оформить следующий заказ. Последовательность другого покупателя на той же
// сессии (общий девайс, повторный вход) тоже заменяется: чужой выбранный адрес
// и чужая попытка сабмита не должны доставаться новому пользователю.
func (s *Service) Begin(customerID, sessionID string) *Sequencer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq, ok := s.sequencers[sessionID]; ok && seq.customerID == customerID && seq.State() != StateCompleted {
		return seq
	}
	seq := NewSequencer(customerID, sessionID, s.deps)
	s.sequencers[sessionID] = seq
	return seq
}

// Current возвращает активную последовательность сессии, если она есть.
func (s *Service) Current(sessionID string) (*Sequencer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, ok := s.sequencers[sessionID]
	return seq, ok
}

// Abandon сбрасывает последовательность сессии.
func (s *Service) Abandon(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sequencers, sessionID)
}
