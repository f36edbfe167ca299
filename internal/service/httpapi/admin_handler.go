package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/domain"
	"github.com/norafoods/storefront/internal/messaging/kafka"
)

// Бакет изображений товаров.
const productImageBucket = "productimg"

// Максимальный размер загружаемого изображения.
const maxImageSize = 5 << 20

// AdminHandler — бэк-офис: товары, категории, заказы, слоты бестселлеров.
type AdminHandler struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	orders     domain.OrderRepository
	timeline   domain.TimelineRepository
	images     domain.ObjectStorage
	producer   *kafka.Producer
	logger     *log.Entry
}

func NewAdminHandler(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	orders domain.OrderRepository,
	timeline domain.TimelineRepository,
	images domain.ObjectStorage,
	producer *kafka.Producer,
	logger *log.Entry,
) *AdminHandler {
	if logger == nil {
		logger = log.WithField("component", "admin-handler")
	}
	return &AdminHandler{
		products:   products,
		categories: categories,
		orders:     orders,
		timeline:   timeline,
		images:     images,
		producer:   producer,
		logger:     logger,
	}
}

type productRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Category    string `json:"category"`
	PriceMinor  int64  `json:"price_minor"`
	PackSize    string `json:"pack_size"`
	Stock       int32  `json:"stock"`
	ShelfLife   string `json:"shelf_life"`
	Ingredients string `json:"ingredients"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func (req productRequest) toDomain(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        req.Name,
		Slug:        req.Slug,
		Category:    req.Category,
		PriceMinor:  req.PriceMinor,
		PackSize:    req.PackSize,
		Stock:       req.Stock,
		ShelfLife:   req.ShelfLife,
		Ingredients: req.Ingredients,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
}

func respondValidation(w http.ResponseWriter, errs []error) {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	respondError(w, http.StatusBadRequest, "invalid_request", strings.Join(messages, "; "))
}

// CreateProduct добавляет карточку товара.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product := req.toDomain(uuid.NewString())
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if errs := product.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	if err := h.products.Create(product); err != nil {
		h.logger.WithError(err).WithField("slug", product.Slug).Error("failed to create product")
		respondDomainError(w, err)
		return
	}
	h.logger.WithFields(log.Fields{"product_id": product.ID, "slug": product.Slug}).Info("product created")
	respondJSON(w, http.StatusCreated, product)
}

// UpdateProduct перезаписывает карточку товара.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	existing, err := h.products.Get(productID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product := req.toDomain(existing.ID)
	product.Bestseller = existing.Bestseller
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	if errs := product.Validate(); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	if err := h.products.Update(product); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// DeleteProduct убирает товар с витрины.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if err := h.products.Delete(productID); err != nil {
		respondDomainError(w, err)
		return
	}
	h.logger.WithField("product_id", productID).Info("product deleted")
	respondJSON(w, http.StatusNoContent, nil)
}

// UploadImage принимает изображение товара, кладёт его в бакет и
// прописывает публичный URL в карточку.
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	product, err := h.products.Get(productID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "image file is required")
		return
	}
	defer file.Close()

	// Имя объекта уникально: замена изображения не ломает закэшированные URL.
	ext := filepath.Ext(header.Filename)
	objectPath := fmt.Sprintf("%s/%s-%d%s", productImageBucket, product.ID, time.Now().UnixMilli(), ext)
	if err := h.images.Upload(r.Context(), objectPath, file); err != nil {
		h.logger.WithError(err).WithField("product_id", product.ID).Error("failed to upload product image")
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to store image")
		return
	}

	product.ImageURL = h.images.PublicURL(objectPath)
	product.UpdatedAt = time.Now().UTC()
	if err := h.products.Update(product); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

type categoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory добавляет категорию в справочник.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "category name is required")
		return
	}

	category := domain.Category{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.categories.Create(category); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

// DeleteCategory убирает категорию из справочника.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(chi.URLParam(r, "categoryID")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// ListOrders возвращает заказы всех покупателей, опционально по статусу.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respondDomainError(w, domain.ErrInvalidOrderStatus)
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	orders, err := h.orders.List(status, limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list orders")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// UpdateOrderStatus переводит заказ в новый статус с optimistic locking.
// Конкурентная правка того же заказа отдаёт конфликт, а не теряет изменение.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !req.Status.Valid() {
		respondDomainError(w, domain.ErrInvalidOrderStatus)
		return
	}

	order, err := h.orders.Get(orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	previous := order.Status
	order.Status = req.Status
	order.UpdatedAt = time.Now().UTC()

	if err := h.orders.Save(order); err != nil {
		if !errors.Is(err, domain.ErrOrderVersionConflict) {
			h.logger.WithError(err).WithField("order_id", orderID).Error("failed to update order status")
		}
		respondDomainError(w, err)
		return
	}
	order.Version++

	h.appendTimeline(orderID, "StatusChanged", fmt.Sprintf("%s -> %s", previous, req.Status))
	h.publishOrderEvent(kafka.EventTypeOrderStatusChanged, order, map[string]interface{}{
		"previous_status": string(previous),
	})
	h.logger.WithFields(log.Fields{
		"order_id": orderID,
		"from":     previous,
		"to":       req.Status,
	}).Info("order status updated")
	respondJSON(w, http.StatusOK, order)
}

// MarkPaid фиксирует факт оплаты заказа.
func (h *AdminHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, err := h.orders.Get(orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if order.Payment == domain.PaymentStatusPaid {
		respondJSON(w, http.StatusOK, order)
		return
	}
	order.Payment = domain.PaymentStatusPaid
	order.UpdatedAt = time.Now().UTC()

	if err := h.orders.Save(order); err != nil {
		respondDomainError(w, err)
		return
	}
	order.Version++

	h.appendTimeline(orderID, "PaymentMarked", string(domain.PaymentStatusPaid))
	h.publishOrderEvent(kafka.EventTypeOrderPaymentMarked, order, nil)
	respondJSON(w, http.StatusOK, order)
}

type bestsellersRequest struct {
	ProductIDs []string `json:"product_ids"`
}

// SetBestsellers переназначает слоты бестселлеров на главной: прежние
// пометки снимаются, переданные товары занимают слоты.
func (h *AdminHandler) SetBestsellers(w http.ResponseWriter, r *http.Request) {
	var req bestsellersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.products.SetBestsellers(req.ProductIDs); err != nil {
		respondDomainError(w, err)
		return
	}
	h.logger.WithField("product_ids", req.ProductIDs).Info("bestseller slots updated")

	products, err := h.products.List(domain.ProductFilter{BestsellersOnly: true})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *AdminHandler) appendTimeline(orderID, eventType, reason string) {
	if h.timeline == nil {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	}
	if err := h.timeline.Append(event); err != nil {
		h.logger.WithError(err).WithField("order_id", orderID).Warn("failed to append timeline event")
	}
}

func (h *AdminHandler) publishOrderEvent(eventType kafka.EventType, order domain.Order, metadata map[string]interface{}) {
	if h.producer == nil {
		return
	}
	event := kafka.NewOrderEvent(eventType, order.ID, order.CustomerID, string(order.Status), metadata)
	if err := h.producer.PublishEvent(kafka.TopicOrderEvents, order.CustomerID, event); err != nil {
		h.logger.WithError(err).WithField("event_type", eventType).Warn("failed to publish order event")
	}
}
