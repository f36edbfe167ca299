package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/domain"
)

// AddressesHandler управляет адресной книгой покупателя.
type AddressesHandler struct {
	addresses domain.AddressRepository
	logger    *log.Entry
}

func NewAddressesHandler(addresses domain.AddressRepository, logger *log.Entry) *AddressesHandler {
	if logger == nil {
		logger = log.WithField("component", "addresses-handler")
	}
	return &AddressesHandler{addresses: addresses, logger: logger}
}

type addressRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

func (req addressRequest) toDomain(id, customerID string) domain.Address {
	return domain.Address{
		ID:         id,
		CustomerID: customerID,
		Name:       req.Name,
		Phone:      req.Phone,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		Pincode:    req.Pincode,
	}
}

// List возвращает адреса текущего покупателя.
func (h *AddressesHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}

	addresses, err := h.addresses.ListByCustomer(session.UserID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list addresses")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, addresses)
}

// Create сохраняет новый адрес доставки.
func (h *AddressesHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}

	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	address := req.toDomain(uuid.NewString(), session.UserID)
	address.CreatedAt = time.Now().UTC()
	if err := address.Validate(); err != nil {
		respondDomainError(w, err)
		return
	}
	if err := h.addresses.Create(address); err != nil {
		h.logger.WithError(err).Error("failed to create address")
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, address)
}

// Update перезаписывает адрес покупателя.
func (h *AddressesHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}
	addressID := chi.URLParam(r, "addressID")

	existing, err := h.addresses.Get(addressID, session.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	address := req.toDomain(existing.ID, session.UserID)
	address.CreatedAt = existing.CreatedAt
	if err := address.Validate(); err != nil {
		respondDomainError(w, err)
		return
	}
	if err := h.addresses.Update(address); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, address)
}

// Delete убирает адрес из адресной книги.
func (h *AddressesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}
	if err := h.addresses.Delete(chi.URLParam(r, "addressID"), session.UserID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
