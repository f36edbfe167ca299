package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/domain"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour
)

// cachedResponse — сериализованный ответ для повтора по тому же ключу.
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// idempotencyGuard защищает небезопасные операции от двойного сабмита.
// Повтор запроса с тем же ключом и тем же телом возвращает закэшированный
// ответ вместо повторного выполнения.
type idempotencyGuard struct {
	repo   domain.IdempotencyRepository
	logger *log.Entry
}

func newIdempotencyGuard(repo domain.IdempotencyRepository, logger *log.Entry) *idempotencyGuard {
	if logger == nil {
		logger = log.WithField("component", "idempotency")
	}
	return &idempotencyGuard{repo: repo, logger: logger}
}

// wrap оборачивает обработчик проверкой ключа идемпотентности. Без
// репозитория и без заголовка обработчик выполняется как есть.
func (g *idempotencyGuard) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g == nil || g.repo == nil {
			next(w, r)
			return
		}
		key := r.Header.Get(idempotencyKeyHeader)
		if key == "" {
			next(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		reqHash := requestHash(r.Method, r.URL.Path, body)
		record, err := g.repo.CreateProcessing(key, reqHash, time.Now().UTC().Add(idempotencyTTL))
		if err != nil {
			g.replay(w, err, record)
			return
		}

		recorder := newResponseRecorder(w)
		next(recorder, r)

		if recorder.status >= http.StatusOK && recorder.status < http.StatusMultipleChoices {
			g.cache(key, recorder, g.repo.MarkDone)
		} else {
			g.cache(key, recorder, g.repo.MarkFailed)
		}
	}
}

// replay обслуживает повтор ключа из записи репозитория.
func (g *idempotencyGuard) replay(w http.ResponseWriter, createErr error, record domain.IdempotencyRecord) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		respondError(w, http.StatusConflict, "idempotency_mismatch", "idempotency key is already used with different request payload")
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone, domain.IdempotencyStatusFailed:
			var cached cachedResponse
			if err := json.Unmarshal(record.ResponseBody, &cached); err != nil {
				g.logger.WithError(err).WithField("idempotency_key", record.Key).Warn("failed to decode cached idempotency response")
				respondError(w, http.StatusInternalServerError, "internal_error", "failed to decode cached idempotency response")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(cached.Status)
			_, _ = w.Write(cached.Body)
		case domain.IdempotencyStatusProcessing:
			respondError(w, http.StatusConflict, "idempotency_processing", "request with the same idempotency key is already processing")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "unknown idempotency record status")
		}
	default:
		g.logger.WithError(createErr).Warn("failed to create idempotency record")
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to initialize idempotency request")
	}
}

func (g *idempotencyGuard) cache(key string, recorder *responseRecorder, mark func(string, []byte, int) error) {
	payload, err := json.Marshal(cachedResponse{
		Status: recorder.status,
		Body:   recorder.body,
	})
	if err != nil {
		g.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to encode idempotency payload")
		payload = nil
	}
	if err := mark(key, payload, recorder.status); err != nil {
		g.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotency response")
	}
}

func requestHash(method, path string, body []byte) string {
	sum := sha256.New()
	sum.Write([]byte(method))
	sum.Write([]byte{':'})
	sum.Write([]byte(path))
	sum.Write([]byte{':'})
	sum.Write(body)
	return hex.EncodeToString(sum.Sum(nil))
}

// responseRecorder перехватывает ответ обработчика, чтобы закэшировать его.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   []byte
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	r.body = append(r.body, data...)
	return r.ResponseWriter.Write(data)
}
