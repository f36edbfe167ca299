// Package app собирает витрину: конфигурация, зависимости, HTTP-серверы
// и фоновые воркеры с аккуратной остановкой.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/norafoods/storefront/internal/health"
	"github.com/norafoods/storefront/internal/service/httpapi"
)

const shutdownTimeout = 10 * time.Second

// Run запускает приложение и блокируется до отмены ctx или фатальной ошибки
// сервера. Все внешние подключения закрываются перед возвратом.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Products:    deps.Products,
		Categories:  deps.Categories,
		Orders:      deps.Orders,
		Addresses:   deps.Addresses,
		Profiles:    deps.Profiles,
		Timeline:    deps.Timeline,
		Idempotency: deps.Idempotency,
		Images:      deps.Images,
		Carts:       deps.Carts,
		Checkouts:   deps.Checkouts,
		Auth:        deps.Auth,
		Metrics:     deps.Metrics,
		Producer:    deps.Producer,
		Logger:      logger.WithField("layer", "http"),
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		deps.Cleanup.Run(workerCtx)
	}()

	metricsSrv := startMetricsServer(cfg.MetricsAddr, logger, deps.Health)

	apiSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		stopWorkers()
		<-workerDone
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		stopWorkers()
		<-workerDone
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer поднимает служебный HTTP: /metrics для Prometheus
// и health-пробы.
func startMetricsServer(addr string, logger *log.Entry, healthHandler *health.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", health.Liveness)
	mux.HandleFunc("/readyz", healthHandler.Readiness)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()
	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
