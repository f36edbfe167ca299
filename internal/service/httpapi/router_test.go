package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/norafoods/storefront/internal/auth"
	"github.com/norafoods/storefront/internal/cart"
	"github.com/norafoods/storefront/internal/checkout"
	"github.com/norafoods/storefront/internal/domain"
	"github.com/norafoods/storefront/internal/messaging/whatsapp"
	"github.com/norafoods/storefront/internal/storage/memory"
)

type testEnv struct {
	router   http.Handler
	products *memory.ProductRepository
	orders   domain.OrderRepository
	profiles domain.ProfileRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	products := memory.NewProductRepository()
	categories := memory.NewCategoryRepository()
	orders := memory.NewOrderRepository()
	addresses := memory.NewAddressRepository()
	profiles := memory.NewProfileRepository()
	timeline := memory.NewTimelineRepository()
	idempotency := memory.NewIdempotencyRepository()

	carts := cart.NewStore(memory.NewCartRepository(), nil)
	checkouts := checkout.NewService(checkout.Deps{
		Carts:     carts,
		Addresses: addresses,
		Stock:     products,
		Orders:    orders,
		Timeline:  timeline,
		Messenger: whatsapp.NewBuilder("Nora Foods", "917306874286", "", ""),
	})

	provider := auth.NewMockProvider()

	if err := profiles.Upsert(domain.Profile{ID: "admin-1", Name: "Admin", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("seed admin profile: %v", err)
	}
	if err := profiles.Upsert(domain.Profile{ID: "cust-1", Name: "Anita"}); err != nil {
		t.Fatalf("seed customer profile: %v", err)
	}

	if err := addresses.Create(domain.Address{
		ID: "addr-1", CustomerID: "cust-1",
		Name: "Anita", Phone: "9000000000", Line1: "12 Hill Road",
		City: "Kochi", State: "Kerala", Pincode: "682001",
	}); err != nil {
		t.Fatalf("seed address: %v", err)
	}

	now := time.Now().UTC()
	seed := []domain.Product{
		{ID: "p-1", Name: "Banana Chips", Slug: "banana-chips", Category: "Snacks", PriceMinor: 25000, Stock: 10, CreatedAt: now},
		{ID: "p-2", Name: "Jackfruit Halwa", Slug: "jackfruit-halwa", Category: "Sweets", PriceMinor: 40000, Stock: 1, CreatedAt: now},
		{ID: "p-3", Name: "Rice Murukku", Slug: "rice-murukku", Category: "Snacks", PriceMinor: 18000, Stock: 0, CreatedAt: now},
	}
	for _, p := range seed {
		if err := products.Create(p); err != nil {
			t.Fatalf("seed product %s: %v", p.ID, err)
		}
	}

	router := NewRouter(RouterDeps{
		Products:    products,
		Categories:  categories,
		Orders:      orders,
		Addresses:   addresses,
		Profiles:    profiles,
		Timeline:    timeline,
		Idempotency: idempotency,
		Carts:       carts,
		Checkouts:   checkouts,
		Auth:        provider,
	})

	return &testEnv{router: router, products: products, orders: orders, profiles: profiles}
}

// do выполняет запрос; токен трактуется mock-провайдером как ID пользователя.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, cookies []*http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func cartCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == cartSessionCookie {
			return cookie
		}
	}
	t.Fatal("cart session cookie is not set")
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/products?category=Snacks", "", nil, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var products []domain.Product
	decode(t, rec, &products)
	if len(products) != 2 {
		t.Errorf("products = %d, want 2", len(products))
	}

	rec = env.do(t, http.MethodGet, "/api/v1/products/banana-chips", "", nil, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var product domain.Product
	decode(t, rec, &product)
	if product.ID != "p-1" {
		t.Errorf("product = %s, want p-1", product.ID)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/products/no-such-slug", "", nil, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", "", addItemRequest{ProductID: "p-1"}, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: status = %d, body %s", rec.Code, rec.Body.String())
	}
	session := cartCookie(t, rec)
	cookies := []*http.Cookie{session}

	var resp cartResponse
	decode(t, rec, &resp)
	if len(resp.Lines) != 1 || resp.Lines[0].Quantity != 1 {
		t.Fatalf("cart = %+v, want one line qty 1", resp.Lines)
	}

	// Товар с нулевым остатком в корзину не попадает.
	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", "", addItemRequest{ProductID: "p-3"}, cookies, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("out of stock: status = %d, want 422", rec.Code)
	}

	// Количество выше остатка отклоняется, корзина не меняется.
	rec = env.do(t, http.MethodPut, "/api/v1/cart/items/p-1", "", updateQuantityRequest{Quantity: 99}, cookies, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("over ceiling: status = %d, want 422", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/cart/", "", nil, cookies, nil)
	decode(t, rec, &resp)
	if resp.TotalMinor != 25000 {
		t.Errorf("total = %d, want 25000", resp.TotalMinor)
	}

	// Ноль удаляет позицию.
	rec = env.do(t, http.MethodPut, "/api/v1/cart/items/p-1", "", updateQuantityRequest{Quantity: 0}, cookies, nil)
	decode(t, rec, &resp)
	if len(resp.Lines) != 0 {
		t.Errorf("cart = %+v, want empty", resp.Lines)
	}
}

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", "", addItemRequest{ProductID: "p-1"}, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: status = %d", rec.Code)
	}
	cookies := []*http.Cookie{cartCookie(t, rec)}

	// Оформление требует входа.
	rec = env.do(t, http.MethodPost, "/api/v1/checkout/submit", "", nil, cookies, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous submit: status = %d, want 401", rec.Code)
	}

	// Сабмит без адреса отклоняется.
	rec = env.do(t, http.MethodPost, "/api/v1/checkout/submit", "cust-1", nil, cookies, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("submit without address: status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/checkout/address", "cust-1", selectAddressRequest{AddressID: "addr-1"}, cookies, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("select address: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var state checkoutStateResponse
	decode(t, rec, &state)
	if state.State != checkout.StateReviewingSummary {
		t.Fatalf("state = %s, want %s", state.State, checkout.StateReviewingSummary)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/checkout/submit", "cust-1", nil, cookies, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var submitted submitResponse
	decode(t, rec, &submitted)
	if submitted.Order.TotalMinor != 25000 {
		t.Errorf("total = %d, want 25000", submitted.Order.TotalMinor)
	}
	if submitted.WhatsAppURL == "" {
		t.Error("expected whatsapp url")
	}

	// Остаток списан.
	product, err := env.products.Get("p-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 9 {
		t.Errorf("stock = %d, want 9", product.Stock)
	}

	// Заказ виден покупателю и скрыт от чужого аккаунта.
	rec = env.do(t, http.MethodGet, "/api/v1/orders/"+submitted.Order.ID, "cust-1", nil, cookies, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get order: status = %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/v1/orders/"+submitted.Order.ID, "cust-2", nil, cookies, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign order: status = %d, want 404", rec.Code)
	}
}

func TestCheckoutSessionIsolationAndAbandon(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", "", addItemRequest{ProductID: "p-1"}, nil, nil)
	cookies := []*http.Cookie{cartCookie(t, rec)}

	rec = env.do(t, http.MethodPost, "/api/v1/checkout/address", "cust-1", selectAddressRequest{AddressID: "addr-1"}, cookies, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("select address: status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Другой пользователь на том же девайсе (та же cookie корзины) не должен
	// унаследовать чужую последовательность с выбранным адресом.
	rec = env.do(t, http.MethodGet, "/api/v1/checkout/", "cust-2", nil, cookies, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout state: status = %d", rec.Code)
	}
	var state checkoutStateResponse
	decode(t, rec, &state)
	if state.State != checkout.StateSelectingAddress {
		t.Errorf("state = %s, want %s", state.State, checkout.StateSelectingAddress)
	}
	if state.AddressID != "" {
		t.Errorf("inherited address %q from another customer", state.AddressID)
	}

	// Сброс оформления: выбранный адрес забывается, корзина остаётся.
	rec = env.do(t, http.MethodPost, "/api/v1/checkout/address", "cust-1", selectAddressRequest{AddressID: "addr-1"}, cookies, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reselect address: status = %d", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/api/v1/checkout/", "cust-1", nil, cookies, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("abandon: status = %d, want 204", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/v1/checkout/", "cust-1", nil, cookies, nil)
	decode(t, rec, &state)
	if state.State != checkout.StateSelectingAddress || state.AddressID != "" {
		t.Errorf("state after abandon = %+v, want fresh selecting_address", state)
	}
	var cartState cartResponse
	rec = env.do(t, http.MethodGet, "/api/v1/cart/", "", nil, cookies, nil)
	decode(t, rec, &cartState)
	if len(cartState.Lines) != 1 {
		t.Errorf("cart lines = %d, want 1 after abandon", len(cartState.Lines))
	}
}

func TestCheckoutIdempotencyReplay(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", "", addItemRequest{ProductID: "p-2"}, nil, nil)
	cookies := []*http.Cookie{cartCookie(t, rec)}
	env.do(t, http.MethodPost, "/api/v1/checkout/address", "cust-1", selectAddressRequest{AddressID: "addr-1"}, cookies, nil)

	headers := map[string]string{"Idempotency-Key": "key-1"}
	rec = env.do(t, http.MethodPost, "/api/v1/checkout/submit", "cust-1", nil, cookies, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var first submitResponse
	decode(t, rec, &first)

	// Повтор с тем же ключом возвращает закэшированный ответ, второй заказ
	// не создаётся и остаток не списывается повторно.
	rec = env.do(t, http.MethodPost, "/api/v1/checkout/submit", "cust-1", nil, cookies, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("replay: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var second submitResponse
	decode(t, rec, &second)
	if second.Order.ID != first.Order.ID {
		t.Errorf("replayed order = %s, want %s", second.Order.ID, first.Order.ID)
	}

	product, err := env.products.Get("p-2")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 0 {
		t.Errorf("stock = %d, want 0", product.Stock)
	}

	orders, err := env.orders.ListByCustomer("cust-1", 10)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("orders = %d, want 1", len(orders))
	}
}

func TestAdminGate(t *testing.T) {
	env := newTestEnv(t)
	body := productRequest{Name: "Ghee Cake", Slug: "ghee-cake", PriceMinor: 30000, Stock: 5}

	rec := env.do(t, http.MethodPost, "/api/v1/admin/products", "", body, nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/admin/products", "cust-1", body, nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("customer: status = %d, want 403", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/admin/products", "admin-1", body, nil, nil)
	if rec.Code != http.StatusCreated {
		t.Errorf("admin: status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAdminOrderStatusAndBestsellers(t *testing.T) {
	env := newTestEnv(t)

	// Оформляем заказ от покупателя.
	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", "", addItemRequest{ProductID: "p-1"}, nil, nil)
	cookies := []*http.Cookie{cartCookie(t, rec)}
	env.do(t, http.MethodPost, "/api/v1/checkout/address", "cust-1", selectAddressRequest{AddressID: "addr-1"}, cookies, nil)
	rec = env.do(t, http.MethodPost, "/api/v1/checkout/submit", "cust-1", nil, cookies, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d", rec.Code)
	}
	var submitted submitResponse
	decode(t, rec, &submitted)

	// Недопустимый статус отклоняется.
	rec = env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+submitted.Order.ID+"/status", "admin-1",
		updateStatusRequest{Status: "lost"}, nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad status: status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+submitted.Order.ID+"/status", "admin-1",
		updateStatusRequest{Status: domain.OrderStatusShipped}, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated domain.Order
	decode(t, rec, &updated)
	if updated.Status != domain.OrderStatusShipped {
		t.Errorf("status = %s, want shipped", updated.Status)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/admin/orders/"+submitted.Order.ID+"/paid", "admin-1", nil, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid: status = %d", rec.Code)
	}
	decode(t, rec, &updated)
	if updated.Payment != domain.PaymentStatusPaid {
		t.Errorf("payment = %s, want paid", updated.Payment)
	}

	// Слоты бестселлеров: три помещаются, четыре — нет.
	rec = env.do(t, http.MethodPut, "/api/v1/admin/bestsellers", "admin-1",
		bestsellersRequest{ProductIDs: []string{"p-1", "p-2"}}, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("set bestsellers: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var bestsellers []domain.Product
	decode(t, rec, &bestsellers)
	if len(bestsellers) != 2 {
		t.Errorf("bestsellers = %d, want 2", len(bestsellers))
	}

	tooMany := make([]string, 0, domain.BestsellerSlots+1)
	for i := 0; i <= domain.BestsellerSlots; i++ {
		tooMany = append(tooMany, fmt.Sprintf("p-%d", i+1))
	}
	rec = env.do(t, http.MethodPut, "/api/v1/admin/bestsellers", "admin-1",
		bestsellersRequest{ProductIDs: tooMany}, nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("too many bestsellers: status = %d, want 400", rec.Code)
	}
}
