package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/norafoods/storefront/internal/domain"
	"github.com/norafoods/storefront/internal/storage/memory"
)

func newOrder(id string) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:         id,
		CustomerID: "customer-1",
		Status:     domain.OrderStatusPending,
		Payment:    domain.PaymentStatusPending,
		TotalMinor: 500,
		ShippingAddress: domain.Address{
			Name:    "Asha",
			Phone:   "+91 90000 00000",
			Line1:   "12 Hill Road",
			City:    "Kochi",
			State:   "Kerala",
			Pincode: "682001",
		},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepository_CreateAddLinesGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder("order-1")

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.AddLines("order-1", []domain.OrderLine{
		{ID: "line-1", ProductID: "p1", Qty: 5, PriceAtPurchaseMinor: 100},
	}); err != nil {
		t.Fatalf("add lines failed: %v", err)
	}

	stored, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(stored.Lines))
	}
}

func TestOrderRepository_AddLinesMissingOrder(t *testing.T) {
	repo := memory.NewOrderRepository()
	err := repo.AddLines("ghost", []domain.OrderLine{{ID: "line-1"}})
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListByCustomer(t *testing.T) {
	repo := memory.NewOrderRepository()
	first := newOrder("order-1")
	second := newOrder("order-2")
	second.CreatedAt = first.CreatedAt.Add(time.Minute)

	if err := repo.Create(first); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(second); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.ListByCustomer("customer-1", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	// Свежие заказы первыми.
	if orders[0].ID != "order-2" {
		t.Fatalf("expected order-2 first, got %s", orders[0].ID)
	}
}

func TestOrderRepository_ListByStatus(t *testing.T) {
	repo := memory.NewOrderRepository()
	pending := newOrder("order-1")
	shipped := newOrder("order-2")
	shipped.Status = domain.OrderStatusShipped

	if err := repo.Create(pending); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(shipped); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.List(domain.OrderStatusShipped, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "order-2" {
		t.Fatalf("unexpected status filter result: %+v", orders)
	}

	all, err := repo.List("", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders without filter, got %d", len(all))
	}
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	repo := memory.NewOrderRepository()
	if err := repo.Create(newOrder("order-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	stored.Status = domain.OrderStatusProcessing
	if err := repo.Save(stored); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Сохранение со старой версией должно упереться в конфликт.
	stored.Status = domain.OrderStatusShipped
	if err := repo.Save(stored); !domain.IsVersionConflict(err) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	updated, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.Status != domain.OrderStatusProcessing || updated.Version != 1 {
		t.Fatalf("unexpected state after conflict: status=%s version=%d", updated.Status, updated.Version)
	}
}

func TestOrderRepository_Delete(t *testing.T) {
	repo := memory.NewOrderRepository()
	if err := repo.Create(newOrder("order-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Delete("order-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Get("order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
