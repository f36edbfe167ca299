// Package health отдаёт liveness/readiness-пробы и сводный health-отчёт
// по зависимостям витрины (PostgreSQL, Redis, Kafka).
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status — статус отдельной проверки или сервиса в целом.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

const checkTimeout = 3 * time.Second

// CheckFunc проверяет одну зависимость. Ошибка означает unhealthy.
type CheckFunc func(ctx context.Context) error

// Check — результат одной проверки.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Report — сводный ответ /health.
type Report struct {
	Status        Status    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Checks        []Check   `json:"checks,omitempty"`
	Version       string    `json:"version,omitempty"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

type registered struct {
	name     string
	critical bool
	fn       CheckFunc
}

// Handler выполняет зарегистрированные проверки и отдаёт отчёт.
type Handler struct {
	mu        sync.RWMutex
	checks    []registered
	version   string
	startTime time.Time
}

// NewHandler создаёт handler. version попадает в отчёт как есть.
func NewHandler(version string) *Handler {
	return &Handler{
		version:   version,
		startTime: time.Now(),
	}
}

// Register добавляет проверку. Некритичные проверки при ошибке
// переводят сервис в degraded, но не роняют readiness.
func (h *Handler) Register(name string, critical bool, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, registered{name: name, critical: critical, fn: fn})
}

func (h *Handler) snapshot() []registered {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]registered, len(h.checks))
	copy(out, h.checks)
	return out
}

func (h *Handler) run(ctx context.Context) Report {
	checks := h.snapshot()

	results := make([]Check, len(checks))
	overall := StatusHealthy

	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c registered) {
			defer wg.Done()
			results[i] = runCheck(ctx, c)
		}(i, c)
	}
	wg.Wait()

	for i, res := range results {
		if res.Status != StatusUnhealthy {
			continue
		}
		if checks[i].critical {
			overall = StatusUnhealthy
		} else if overall == StatusHealthy {
			overall = StatusDegraded
			results[i].Status = StatusDegraded
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	return Report{
		Status:        overall,
		Timestamp:     time.Now().UTC(),
		Checks:        results,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}
}

func runCheck(ctx context.Context, c registered) Check {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := c.fn(ctx)
	elapsed := time.Since(start)

	check := Check{Name: c.name, Status: StatusHealthy, DurationMs: elapsed.Milliseconds()}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}

// ServeHTTP — полный health-отчёт. 503, если критичная зависимость недоступна.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report := h.run(r.Context())

	statusCode := http.StatusOK
	if report.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(report)
}

// Liveness всегда отвечает 200: процесс жив и принимает запросы.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readiness отвечает 503, пока хотя бы одна критичная зависимость нездорова.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	report := h.run(r.Context())
	if report.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
