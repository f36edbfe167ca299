package domain_test

import (
	"errors"
	"testing"

	"github.com/norafoods/storefront/internal/domain"
)

// helper для снапшота товара с заданной ценой и остатком.
func snapshot(id string, priceMinor int64, stock int32) domain.CartLine {
	return domain.CartLine{
		ProductID:      id,
		Name:           "product " + id,
		UnitPriceMinor: priceMinor,
		StockCeiling:   stock,
	}
}

func TestCartAddItem_NewLine(t *testing.T) {
	var cart domain.Cart

	if err := cart.AddItem(snapshot("p1", 100, 2)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	line, ok := cart.Line("p1")
	if !ok {
		t.Fatal("expected line for p1")
	}
	if line.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", line.Quantity)
	}
	if cart.TotalMinor() != 100 {
		t.Fatalf("expected total 100, got %d", cart.TotalMinor())
	}
}

func TestCartAddItem_OutOfStock(t *testing.T) {
	var cart domain.Cart

	err := cart.AddItem(snapshot("p1", 100, 0))
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatal("rejected add must not mutate the cart")
	}
}

func TestCartAddItem_IncrementUpToCeiling(t *testing.T) {
	var cart domain.Cart
	item := snapshot("p1", 100, 2)

	if err := cart.AddItem(item); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := cart.AddItem(item); err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if cart.TotalMinor() != 200 {
		t.Fatalf("expected total 200, got %d", cart.TotalMinor())
	}

	// Третий добавить нельзя: остаток 2.
	err := cart.AddItem(item)
	if !errors.Is(err, domain.ErrStockCeilingExceeded) {
		t.Fatalf("expected ErrStockCeilingExceeded, got %v", err)
	}
	line, _ := cart.Line("p1")
	if line.Quantity != 2 {
		t.Fatalf("rejected add must keep quantity 2, got %d", line.Quantity)
	}
	if cart.TotalMinor() != 200 {
		t.Fatalf("rejected add must keep total 200, got %d", cart.TotalMinor())
	}
}

func TestCartAddItem_RefreshesCeiling(t *testing.T) {
	var cart domain.Cart

	if err := cart.AddItem(snapshot("p1", 100, 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	// Остаток вырос с момента первого добавления: потолок обновляется.
	if err := cart.AddItem(snapshot("p1", 100, 5)); err != nil {
		t.Fatalf("add with refreshed stock failed: %v", err)
	}
	line, _ := cart.Line("p1")
	if line.Quantity != 2 || line.StockCeiling != 5 {
		t.Fatalf("expected qty=2 ceiling=5, got qty=%d ceiling=%d", line.Quantity, line.StockCeiling)
	}
}

func TestCartUpdateQuantity_ExceedsCeiling(t *testing.T) {
	var cart domain.Cart
	item := snapshot("p1", 100, 2)
	_ = cart.AddItem(item)
	_ = cart.AddItem(item)

	err := cart.UpdateQuantity("p1", 5)
	if !errors.Is(err, domain.ErrStockCeilingExceeded) {
		t.Fatalf("expected ErrStockCeilingExceeded, got %v", err)
	}
	line, _ := cart.Line("p1")
	if line.Quantity != 2 {
		t.Fatalf("expected quantity to stay 2, got %d", line.Quantity)
	}
}

func TestCartUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	var cart domain.Cart
	_ = cart.AddItem(snapshot("p1", 100, 2))

	if err := cart.UpdateQuantity("p1", 0); err != nil {
		t.Fatalf("update to zero failed: %v", err)
	}
	if _, ok := cart.Line("p1"); ok {
		t.Fatal("quantity 0 must remove the line")
	}
	if cart.TotalMinor() != 0 {
		t.Fatalf("empty cart total must be 0, got %d", cart.TotalMinor())
	}
}

func TestCartUpdateQuantity_MissingLineIsNoop(t *testing.T) {
	var cart domain.Cart
	if err := cart.UpdateQuantity("ghost", 3); err != nil {
		t.Fatalf("update of missing line must be a no-op, got %v", err)
	}
}

func TestCartRemoveThenAdd_StartsFresh(t *testing.T) {
	var cart domain.Cart
	item := snapshot("p1", 100, 5)
	_ = cart.AddItem(item)
	_ = cart.UpdateQuantity("p1", 4)

	cart.RemoveItem("p1")
	if err := cart.AddItem(item); err != nil {
		t.Fatalf("re-add failed: %v", err)
	}

	line, _ := cart.Line("p1")
	if line.Quantity != 1 {
		t.Fatalf("re-added line must start at quantity 1, got %d", line.Quantity)
	}
}

func TestCartTotalMinor_MultipleLines(t *testing.T) {
	var cart domain.Cart
	p1 := snapshot("p1", 100, 5)
	_ = cart.AddItem(p1)
	_ = cart.AddItem(p1)
	_ = cart.AddItem(snapshot("p2", 50, 5))

	if cart.TotalMinor() != 250 {
		t.Fatalf("expected total 250, got %d", cart.TotalMinor())
	}

	cart.RemoveItem("p1")
	if cart.TotalMinor() != 50 {
		t.Fatalf("expected total 50 after removal, got %d", cart.TotalMinor())
	}
}

func TestCartStockAdjustments(t *testing.T) {
	var cart domain.Cart
	p1 := snapshot("p1", 100, 5)
	_ = cart.AddItem(p1)
	_ = cart.AddItem(p1)
	_ = cart.AddItem(snapshot("p2", 50, 5))

	adjustments := cart.StockAdjustments()
	if len(adjustments) != 2 {
		t.Fatalf("expected 2 adjustments, got %d", len(adjustments))
	}
	if adjustments[0].ProductID != "p1" || adjustments[0].Quantity != 2 {
		t.Fatalf("unexpected first adjustment: %+v", adjustments[0])
	}
	if adjustments[1].ProductID != "p2" || adjustments[1].Quantity != 1 {
		t.Fatalf("unexpected second adjustment: %+v", adjustments[1])
	}
}

func TestQuantityAdmissible(t *testing.T) {
	cases := []struct {
		qty, ceiling int32
		want         bool
	}{
		{1, 1, true},
		{2, 5, true},
		{0, 5, false},
		{-1, 5, false},
		{6, 5, false},
		{1, 0, false},
	}
	for _, tc := range cases {
		if got := domain.QuantityAdmissible(tc.qty, tc.ceiling); got != tc.want {
			t.Fatalf("QuantityAdmissible(%d, %d) = %v, want %v", tc.qty, tc.ceiling, got, tc.want)
		}
	}
}
