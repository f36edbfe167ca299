package auth

import (
	"context"

	"github.com/norafoods/storefront/internal/domain"
)

// MockProvider — конфигурируемая заглушка Provider для тестов и локального
// запуска. Токен трактуется как идентификатор пользователя.
type MockProvider struct {
	VerifyErr error
	Sessions  map[string]Session

	VerifyCalls int
}

// NewMockProvider возвращает mock, принимающий любой непустой токен.
func NewMockProvider() *MockProvider {
	return &MockProvider{Sessions: make(map[string]Session)}
}

// Verify возвращает заранее настроенную сессию или ошибку и считает вызовы.
func (m *MockProvider) Verify(ctx context.Context, token string) (Session, error) {
	m.VerifyCalls++
	if m.VerifyErr != nil {
		return Session{}, m.VerifyErr
	}
	if token == "" {
		return Session{}, domain.ErrUnauthenticated
	}
	if session, ok := m.Sessions[token]; ok {
		return session, nil
	}
	return Session{UserID: token}, nil
}

var _ Provider = (*MockProvider)(nil)
