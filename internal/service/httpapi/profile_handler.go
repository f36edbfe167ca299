package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/domain"
)

// ProfileHandler отдаёт и обновляет профиль текущего пользователя.
type ProfileHandler struct {
	profiles domain.ProfileRepository
	logger   *log.Entry
}

func NewProfileHandler(profiles domain.ProfileRepository, logger *log.Entry) *ProfileHandler {
	if logger == nil {
		logger = log.WithField("component", "profile-handler")
	}
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// Get возвращает профиль пользователя; при первом обращении создаётся
// профиль покупателя.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}

	profile, err := h.profiles.Get(session.UserID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		profile = domain.Profile{
			ID:        session.UserID,
			Email:     session.Email,
			Role:      domain.RoleCustomer,
			CreatedAt: time.Now().UTC(),
		}
		if err := h.profiles.Upsert(profile); err != nil {
			h.logger.WithError(err).WithField("user_id", session.UserID).Error("failed to create profile")
			respondDomainError(w, err)
			return
		}
	} else if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Update меняет имя и почту профиля. Роль через это API не меняется.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrUnauthenticated)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	profile := domain.Profile{
		ID:    session.UserID,
		Name:  req.Name,
		Email: req.Email,
	}
	if err := h.profiles.Upsert(profile); err != nil {
		respondDomainError(w, err)
		return
	}

	stored, err := h.profiles.Get(session.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stored)
}
