// Пакет httpapi — JSON API витрины: публичный каталог, корзина сессии,
// оформление заказа и бэк-офис.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/auth"
	"github.com/norafoods/storefront/internal/cart"
	"github.com/norafoods/storefront/internal/checkout"
	"github.com/norafoods/storefront/internal/domain"
	"github.com/norafoods/storefront/internal/messaging/kafka"
	"github.com/norafoods/storefront/internal/metrics"
)

// RouterDeps — всё, что нужно HTTP API. Producer и Idempotency опциональны.
type RouterDeps struct {
	Products    domain.ProductRepository
	Categories  domain.CategoryRepository
	Orders      domain.OrderRepository
	Addresses   domain.AddressRepository
	Profiles    domain.ProfileRepository
	Timeline    domain.TimelineRepository
	Idempotency domain.IdempotencyRepository
	Images      domain.ObjectStorage
	Carts       *cart.Store
	Checkouts   *checkout.Service
	Auth        auth.Provider
	Metrics     *metrics.CheckoutMetrics
	Producer    *kafka.Producer
	Logger      *log.Entry
}

// NewRouter собирает маршруты витрины. Публичный каталог открыт всем,
// корзина привязана к cookie сессии, оформление и заказы требуют входа,
// бэк-офис — роли администратора.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}

	guard := newAuthGuard(deps.Auth, deps.Profiles, logger)
	idem := newIdempotencyGuard(deps.Idempotency, logger)

	catalog := NewCatalogHandler(deps.Products, deps.Categories, logger)
	carts := NewCartHandler(deps.Carts, deps.Products, deps.Metrics, logger)
	checkouts := NewCheckoutHandler(deps.Checkouts, idem, logger)
	orders := NewOrdersHandler(deps.Orders, deps.Timeline, logger)
	addresses := NewAddressesHandler(deps.Addresses, logger)
	profiles := NewProfileHandler(deps.Profiles, logger)
	admin := NewAdminHandler(deps.Products, deps.Categories, deps.Orders, deps.Timeline, deps.Images, deps.Producer, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(withCartSession)

	r.Route("/api/v1", func(r chi.Router) {
		// Публичная витрина.
		r.Get("/products", catalog.ListProducts)
		r.Get("/products/{slug}", catalog.GetProduct)
		r.Get("/categories", catalog.ListCategories)

		// Корзина сессии; вход не требуется.
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.Get)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{productID}", carts.UpdateQuantity)
			r.Delete("/items/{productID}", carts.RemoveItem)
			r.Delete("/", carts.Clear)
		})

		// Личный кабинет.
		r.Group(func(r chi.Router) {
			r.Use(guard.requireUser)

			r.Get("/profile", profiles.Get)
			r.Put("/profile", profiles.Update)

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", addresses.List)
				r.Post("/", addresses.Create)
				r.Put("/{addressID}", addresses.Update)
				r.Delete("/{addressID}", addresses.Delete)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkouts.State)
				r.Post("/address", checkouts.SelectAddress)
				r.Post("/back", checkouts.Back)
				r.Post("/submit", checkouts.Submit)
				r.Post("/retry", checkouts.Retry)
				r.Delete("/", checkouts.Abandon)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orders.List)
				r.Get("/{orderID}", orders.Get)
			})
		})

		// Бэк-офис.
		r.Route("/admin", func(r chi.Router) {
			r.Use(guard.requireUser)
			r.Use(guard.requireAdmin)

			r.Post("/products", admin.CreateProduct)
			r.Put("/products/{productID}", admin.UpdateProduct)
			r.Delete("/products/{productID}", admin.DeleteProduct)
			r.Post("/products/{productID}/image", admin.UploadImage)
			r.Put("/bestsellers", admin.SetBestsellers)

			r.Post("/categories", admin.CreateCategory)
			r.Delete("/categories/{categoryID}", admin.DeleteCategory)

			r.Get("/orders", admin.ListOrders)
			r.Patch("/orders/{orderID}/status", admin.UpdateOrderStatus)
			r.Post("/orders/{orderID}/paid", admin.MarkPaid)
		})
	})

	return r
}
