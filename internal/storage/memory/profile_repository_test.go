package memory

import (
	"errors"
	"testing"

	"github.com/norafoods/storefront/internal/domain"
)

func TestProfileUpsertCreatesWithDefaultRole(t *testing.T) {
	repo := NewProfileRepository()

	if err := repo.Upsert(domain.Profile{ID: "u-1", Name: "Anita", Email: "anita@example.com"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	profile, err := repo.Get("u-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if profile.Role != domain.RoleCustomer {
		t.Errorf("role = %s, want %s", profile.Role, domain.RoleCustomer)
	}
	if profile.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set on create")
	}
}

func TestProfileUpsertNeverChangesRole(t *testing.T) {
	repo := NewProfileRepository()

	if err := repo.Upsert(domain.Profile{ID: "u-1", Name: "Anita", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	// Обновление профиля, даже с заполненной ролью, роль не трогает:
	// ровно как ON CONFLICT-апдейт в postgres-реализации.
	if err := repo.Upsert(domain.Profile{ID: "u-1", Name: "Anita R", Email: "anita@example.com", Role: domain.RoleCustomer}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	profile, err := repo.Get("u-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if profile.Role != domain.RoleAdmin {
		t.Errorf("role = %s, want %s to survive upsert", profile.Role, domain.RoleAdmin)
	}
	if profile.Name != "Anita R" {
		t.Errorf("name = %s, want updated name", profile.Name)
	}
}

func TestProfileGetMissing(t *testing.T) {
	repo := NewProfileRepository()

	if _, err := repo.Get("ghost"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}
