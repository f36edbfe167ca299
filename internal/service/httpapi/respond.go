package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/domain"
)

// ErrorResponse — единый формат ошибок JSON API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondDomainError переводит доменные ошибки в HTTP-статусы. Рекомендательные
// отказы корзины и остатков отдаются как 422: клиент может показать их
// покупателю и продолжить.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsAdvisory(err) || errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrCartEmpty):
		respondError(w, http.StatusUnprocessableEntity, "rejected", err.Error())
	case domain.IsNotFound(err):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case domain.IsVersionConflict(err) || errors.Is(err, domain.ErrSubmissionInFlight) ||
		errors.Is(err, domain.ErrProductExists) || errors.Is(err, domain.ErrCategoryExists):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrAddressRequired), errors.Is(err, domain.ErrSlugRequired),
		errors.Is(err, domain.ErrProductNameRequired), errors.Is(err, domain.ErrBestsellerLimit),
		errors.Is(err, domain.ErrInvalidOrderStatus), errors.Is(err, domain.ErrIdempotencyKeyRequired):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
