package app

import (
	"context"
	"testing"
)

func TestNewDependenciesInMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Images.Dir = t.TempDir()

	deps, err := NewDependencies(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	defer deps.Close()

	if deps.Products == nil || deps.Stock == nil {
		t.Error("expected product repository and stock service to be wired")
	}
	if deps.Orders == nil || deps.Addresses == nil || deps.Profiles == nil {
		t.Error("expected order, address and profile repositories to be wired")
	}
	if deps.Carts == nil || deps.Checkouts == nil {
		t.Error("expected cart store and checkout service to be wired")
	}
	if deps.Idempotency == nil || deps.Cleanup == nil {
		t.Error("expected idempotency repository and cleanup worker to be wired")
	}
	if deps.Images == nil {
		t.Error("expected object storage to be wired")
	}
	if deps.Producer != nil {
		t.Error("expected no kafka producer without brokers")
	}
	if deps.Health == nil {
		t.Error("expected health handler to be wired")
	}
}

func TestNewDependenciesBadImageDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Images.Dir = "   "

	if _, err := NewDependencies(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for blank image dir")
	}
}
