// Пакет auth проверяет токены запросов и сопоставляет их с покупателями.
package auth

import "context"

// Session — подтверждённая личность носителя токена.
type Session struct {
	UserID string
	Email  string
}

// Provider проверяет bearer-токен и возвращает сессию. Невалидный или
// просроченный токен возвращает ошибку, а не пустую сессию.
type Provider interface {
	Verify(ctx context.Context, token string) (Session, error)
}
