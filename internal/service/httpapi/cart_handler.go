package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/cart"
	"github.com/norafoods/storefront/internal/domain"
	"github.com/norafoods/storefront/internal/metrics"
)

// CartHandler управляет корзиной текущей сессии. Товар в корзину попадает
// снапшотом каталожной карточки: цена и потолок остатка фиксируются на момент
// добавления.
type CartHandler struct {
	carts    *cart.Store
	products domain.ProductRepository
	metrics  *metrics.CheckoutMetrics
	logger   *log.Entry
}

func NewCartHandler(carts *cart.Store, products domain.ProductRepository, m *metrics.CheckoutMetrics, logger *log.Entry) *CartHandler {
	if logger == nil {
		logger = log.WithField("component", "cart-handler")
	}
	return &CartHandler{carts: carts, products: products, metrics: m, logger: logger}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

type updateQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

type cartResponse struct {
	Lines      []domain.CartLine `json:"lines"`
	TotalMinor int64             `json:"total_minor"`
}

func newCartResponse(c domain.Cart) cartResponse {
	lines := c.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartResponse{Lines: lines, TotalMinor: c.TotalMinor()}
}

// Get возвращает корзину сессии; неизвестная сессия читается как пустая.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), cartSessionFromContext(r.Context()))
	if err != nil {
		h.logger.WithError(err).Error("failed to load cart")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(c))
}

// AddItem добавляет товар из каталога: новая позиция с количеством 1 или
// инкремент существующей в пределах остатка.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}

	product, err := h.products.Get(req.ProductID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	c, err := h.carts.AddItem(r.Context(), cartSessionFromContext(r.Context()), product.CartLine())
	if err != nil {
		h.recordRejection(err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(c))
}

// UpdateQuantity выставляет количество позиции; ноль и меньше удаляет её.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), cartSessionFromContext(r.Context()), productID, req.Quantity)
	if err != nil {
		h.recordRejection(err)
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(c))
}

// RemoveItem убирает позицию из корзины.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	c, err := h.carts.RemoveItem(r.Context(), cartSessionFromContext(r.Context()), productID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(c))
}

// Clear опустошает корзину сессии.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), cartSessionFromContext(r.Context())); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(domain.Cart{}))
}

func (h *CartHandler) recordRejection(err error) {
	if h.metrics == nil || !domain.IsAdvisory(err) {
		return
	}
	h.metrics.RecordCartRejection(err.Error())
}
