package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/domain"
)

// CatalogHandler отдаёт публичную витрину: товары, бестселлеры, категории.
type CatalogHandler struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	logger     *log.Entry
}

func NewCatalogHandler(products domain.ProductRepository, categories domain.CategoryRepository, logger *log.Entry) *CatalogHandler {
	if logger == nil {
		logger = log.WithField("component", "catalog-handler")
	}
	return &CatalogHandler{products: products, categories: categories, logger: logger}
}

// ListProducts возвращает товары, опционально отфильтрованные по категории
// и признаку бестселлера.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{
		Category:        r.URL.Query().Get("category"),
		BestsellersOnly: r.URL.Query().Get("bestsellers") == "true",
	}

	products, err := h.products.List(filter)
	if err != nil {
		h.logger.WithError(err).Error("failed to list products")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GetProduct возвращает товар по слагу.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	product, err := h.products.GetBySlug(slug)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// ListCategories возвращает справочник категорий.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List()
	if err != nil {
		h.logger.WithError(err).Error("failed to list categories")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
