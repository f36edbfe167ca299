package domain

import "time"

// Role определяет права пользователя в витрине.
type Role string

const (
	// RoleCustomer — обычный покупатель.
	RoleCustomer Role = "customer"
	// RoleAdmin — доступ к бэк-офису.
	RoleAdmin Role = "admin"
)

// Profile — профиль пользователя, привязанный к внешней сессии аутентификации.
type Profile struct {
	// ID совпадает с идентификатором пользователя у провайдера аутентификации.
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin — короткая проверка для authorization guard.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
