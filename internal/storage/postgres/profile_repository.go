package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/norafoods/storefront/internal/domain"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository создаёт PostgreSQL-реализацию профилей.
func NewProfileRepository(store *Store) domain.ProfileRepository {
	return &profileRepository{db: store.DB()}
}

func (r *profileRepository) Get(id string) (domain.Profile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		profile domain.Profile
		role    string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, created_at FROM profiles WHERE id = $1
	`, id).Scan(&profile.ID, &profile.Name, &profile.Email, &role, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, domain.ErrProfileNotFound
		}
		return domain.Profile{}, fmt.Errorf("select profile: %w", err)
	}
	profile.Role = domain.Role(role)
	return profile, nil
}

// Upsert создаёт или обновляет профиль. Роль существующего профиля через
// upsert не меняется: права выдаются только напрямую в базе.
func (r *profileRepository) Upsert(profile domain.Profile) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	role := profile.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	createdAt := profile.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, email, role, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email
	`, profile.ID, profile.Name, profile.Email, string(role), createdAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

var _ domain.ProfileRepository = (*profileRepository)(nil)
