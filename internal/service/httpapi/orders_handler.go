package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/domain"
)

// OrdersHandler отдаёт покупателю его заказы.
type OrdersHandler struct {
	orders   domain.OrderRepository
	timeline domain.TimelineRepository
	logger   *log.Entry
}

func NewOrdersHandler(orders domain.OrderRepository, timeline domain.TimelineRepository, logger *log.Entry) *OrdersHandler {
	if logger == nil {
		logger = log.WithField("component", "orders-handler")
	}
	return &OrdersHandler{orders: orders, timeline: timeline, logger: logger}
}

type orderDetailResponse struct {
	Order    domain.Order           `json:"order"`
	Timeline []domain.TimelineEvent `json:"timeline,omitempty"`
}

// List возвращает заказы текущего покупателя, новые сверху.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	orders, err := h.orders.ListByCustomer(session.UserID, limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list orders")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// Get возвращает заказ покупателя с историей статусов. Чужой заказ
// неотличим от несуществующего.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}

	order, err := h.orders.Get(chi.URLParam(r, "orderID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if order.CustomerID != session.UserID {
		respondDomainError(w, domain.ErrOrderNotFound)
		return
	}

	resp := orderDetailResponse{Order: order}
	if h.timeline != nil {
		events, err := h.timeline.List(order.ID)
		if err != nil {
			h.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to load order timeline")
		} else {
			resp.Timeline = events
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
