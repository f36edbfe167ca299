package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/auth"
	"github.com/norafoods/storefront/internal/domain"
)

type contextKey string

const (
	contextKeySession     contextKey = "session"
	contextKeyCartSession contextKey = "cart_session"
)

const cartSessionCookie = "cart_session"

// sessionFromContext возвращает проверенную сессию запроса.
func sessionFromContext(ctx context.Context) (auth.Session, bool) {
	session, ok := ctx.Value(contextKeySession).(auth.Session)
	return session, ok
}

// cartSessionFromContext возвращает идентификатор корзины запроса.
func cartSessionFromContext(ctx context.Context) string {
	sessionID, _ := ctx.Value(contextKeyCartSession).(string)
	return sessionID
}

// withCartSession привязывает запрос к корзине через cookie. Анонимный
// посетитель получает новый идентификатор при первом обращении.
func withCartSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(cartSessionCookie); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     cartSessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(30 * 24 * time.Hour),
			})
		}
		ctx := context.WithValue(r.Context(), contextKeyCartSession, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authGuard строит middleware поверх провайдера токенов и профилей.
type authGuard struct {
	provider auth.Provider
	profiles domain.ProfileRepository
	logger   *log.Entry
}

func newAuthGuard(provider auth.Provider, profiles domain.ProfileRepository, logger *log.Entry) *authGuard {
	if logger == nil {
		logger = log.WithField("component", "auth-guard")
	}
	return &authGuard{provider: provider, profiles: profiles, logger: logger}
}

// requireUser пропускает только запросы с валидным bearer-токеном.
func (g *authGuard) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondDomainError(w, domain.ErrUnauthenticated)
			return
		}
		session, err := g.provider.Verify(r.Context(), token)
		if err != nil {
			g.logger.WithError(err).Debug("token verification failed")
			respondDomainError(w, domain.ErrUnauthenticated)
			return
		}
		ctx := context.WithValue(r.Context(), contextKeySession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin пропускает только пользователей с ролью администратора.
// Ставится после requireUser.
func (g *authGuard) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromContext(r.Context())
		if !ok {
			respondDomainError(w, domain.ErrUnauthenticated)
			return
		}
		profile, err := g.profiles.Get(session.UserID)
		if err != nil {
			// Пользователь без профиля — не администратор.
			respondDomainError(w, domain.ErrForbidden)
			return
		}
		if !profile.IsAdmin() {
			g.logger.WithField("user_id", session.UserID).Debug("admin access denied")
			respondDomainError(w, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
