package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/norafoods/storefront/internal/domain"
	"github.com/norafoods/storefront/internal/storage/memory"
)

func newStore() *Store {
	return NewStore(memory.NewCartRepository(), nil)
}

func TestStoreGetUnknownSessionReturnsEmptyCart(t *testing.T) {
	s := newStore()

	c, err := s.Get(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !c.IsEmpty() {
		t.Errorf("cart = %+v, want empty", c)
	}
}

func TestStorePersistsAcrossCalls(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	if _, err := s.AddItem(ctx, "sess", domain.CartLine{
		ProductID: "p-1", Name: "Banana Chips", UnitPriceMinor: 25000, StockCeiling: 10,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.AddItem(ctx, "sess", domain.CartLine{
		ProductID: "p-1", UnitPriceMinor: 25000, StockCeiling: 10,
	}); err != nil {
		t.Fatalf("add again: %v", err)
	}

	c, err := s.Get(ctx, "sess")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 2 {
		t.Fatalf("cart = %+v, want one line with qty 2", c.Lines)
	}
	if got := c.TotalMinor(); got != 50000 {
		t.Errorf("total = %d, want 50000", got)
	}
}

func TestStoreRejectionKeepsSnapshot(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	if _, err := s.AddItem(ctx, "sess", domain.CartLine{
		ProductID: "p-1", UnitPriceMinor: 25000, StockCeiling: 1,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Повторное добавление упирается в потолок остатка.
	if _, err := s.AddItem(ctx, "sess", domain.CartLine{
		ProductID: "p-1", UnitPriceMinor: 25000, StockCeiling: 1,
	}); !errors.Is(err, domain.ErrStockCeilingExceeded) {
		t.Fatalf("err = %v, want ErrStockCeilingExceeded", err)
	}

	c, err := s.Get(ctx, "sess")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 1 {
		t.Fatalf("cart = %+v, want untouched line with qty 1", c.Lines)
	}
}

func TestStoreUpdateToZeroDeletesSnapshot(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	if _, err := s.AddItem(ctx, "sess", domain.CartLine{
		ProductID: "p-1", UnitPriceMinor: 25000, StockCeiling: 10,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	c, err := s.UpdateQuantity(ctx, "sess", "p-1", 0)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !c.IsEmpty() {
		t.Errorf("cart = %+v, want empty", c)
	}

	// Пустая корзина читается как пустая, а не как ошибка.
	c, err = s.Get(ctx, "sess")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !c.IsEmpty() {
		t.Errorf("cart = %+v, want empty after delete", c)
	}
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	if _, err := s.AddItem(ctx, "sess-a", domain.CartLine{
		ProductID: "p-1", UnitPriceMinor: 25000, StockCeiling: 10,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	c, err := s.Get(ctx, "sess-b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !c.IsEmpty() {
		t.Errorf("session b cart = %+v, want empty", c)
	}

	if err := s.Clear(ctx, "sess-a"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	c, err = s.Get(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !c.IsEmpty() {
		t.Errorf("session a cart = %+v, want empty after clear", c)
	}
}
