package httpapi

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/checkout"
	"github.com/norafoods/storefront/internal/domain"
)

// CheckoutHandler ведёт последовательность оформления: выбор адреса, сводка,
// сабмит, повтор после сбоя.
type CheckoutHandler struct {
	checkouts *checkout.Service
	guard     *idempotencyGuard
	logger    *log.Entry
}

func NewCheckoutHandler(checkouts *checkout.Service, guard *idempotencyGuard, logger *log.Entry) *CheckoutHandler {
	if logger == nil {
		logger = log.WithField("component", "checkout-handler")
	}
	return &CheckoutHandler{checkouts: checkouts, guard: guard, logger: logger}
}

type selectAddressRequest struct {
	AddressID string `json:"address_id"`
}

type checkoutStateResponse struct {
	State     checkout.State `json:"state"`
	AddressID string         `json:"address_id,omitempty"`
	LastError string         `json:"last_error,omitempty"`
}

type submitResponse struct {
	Order       domain.Order `json:"order"`
	WhatsAppURL string       `json:"whatsapp_url"`
}

func (h *CheckoutHandler) sequencer(r *http.Request) (*checkout.Sequencer, bool) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return h.checkouts.Begin(session.UserID, cartSessionFromContext(r.Context())), true
}

// State возвращает текущее состояние последовательности оформления.
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	seq, ok := h.sequencer(r)
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}
	h.respondState(w, seq)
}

// SelectAddress фиксирует адрес доставки и переводит оформление к сводке.
func (h *CheckoutHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	seq, ok := h.sequencer(r)
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}

	var req selectAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := seq.SelectAddress(req.AddressID); err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondState(w, seq)
}

// Back возвращает оформление к выбору адреса.
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	seq, ok := h.sequencer(r)
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}
	seq.Back()
	h.respondState(w, seq)
}

// Submit выполняет конвейер оформления и возвращает заказ со ссылкой для
// передачи в мессенджер. Защищён ключом идемпотентности.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.guard.wrap(h.submit)(w, r)
}

func (h *CheckoutHandler) submit(w http.ResponseWriter, r *http.Request) {
	seq, ok := h.sequencer(r)
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}

	result, err := seq.Submit(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, submitResponse{
		Order:       result.Order,
		WhatsAppURL: result.MessageURL,
	})
}

// Abandon сбрасывает последовательность оформления сессии: выбранный адрес
// и состояние попытки забываются, корзина остаётся как есть.
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionFromContext(r.Context()); !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}
	h.checkouts.Abandon(cartSessionFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// Retry возвращает проваленное оформление к сводке.
func (h *CheckoutHandler) Retry(w http.ResponseWriter, r *http.Request) {
	seq, ok := h.sequencer(r)
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}
	seq.Retry()
	h.respondState(w, seq)
}

func (h *CheckoutHandler) respondState(w http.ResponseWriter, seq *checkout.Sequencer) {
	resp := checkoutStateResponse{
		State:     seq.State(),
		AddressID: seq.SelectedAddressID(),
	}
	if err := seq.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}
