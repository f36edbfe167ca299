package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics содержит метрики конвейера оформления заказа.
type CheckoutMetrics struct {
	// Счётчики исходов сабмита
	submissionsStarted   prometheus.Counter
	submissionsCompleted prometheus.Counter
	submissionsFailed    prometheus.Counter
	compensationsRun     prometheus.Counter

	// Гистограммы времени выполнения
	submissionDuration prometheus.Histogram
	stepDuration       *prometheus.HistogramVec

	// Счётчик рекомендательных отказов корзины
	cartRejections *prometheus.CounterVec
}

// NewCheckoutMetrics создаёт новый экземпляр метрик оформления.
func NewCheckoutMetrics() *CheckoutMetrics {
	return newCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		submissionsStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "nora_checkout_submissions_started_total",
			Help: "Total number of order submissions started",
		}),
		submissionsCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "nora_checkout_submissions_completed_total",
			Help: "Total number of order submissions completed successfully",
		}),
		submissionsFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "nora_checkout_submissions_failed_total",
			Help: "Total number of order submissions failed",
		}),
		compensationsRun: registerCounter(registerer, prometheus.CounterOpts{
			Name: "nora_checkout_compensations_total",
			Help: "Total number of compensations after a partial submission failure",
		}),
		submissionDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "nora_checkout_submission_duration_seconds",
			Help:    "Duration of order submissions in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "nora_checkout_step_duration_seconds",
			Help:    "Duration of individual submission steps in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"step"}),
		cartRejections: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "nora_cart_rejections_total",
			Help: "Total number of advisory cart rejections grouped by reason",
		}, []string{"reason"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordSubmissionStarted увеличивает счётчик начатых сабмитов.
func (m *CheckoutMetrics) RecordSubmissionStarted() {
	m.submissionsStarted.Inc()
}

// RecordSubmissionCompleted увеличивает счётчик успешных сабмитов.
func (m *CheckoutMetrics) RecordSubmissionCompleted() {
	m.submissionsCompleted.Inc()
}

// RecordSubmissionFailed увеличивает счётчик неудачных сабмитов.
func (m *CheckoutMetrics) RecordSubmissionFailed() {
	m.submissionsFailed.Inc()
}

// RecordCompensation увеличивает счётчик компенсаций.
func (m *CheckoutMetrics) RecordCompensation() {
	m.compensationsRun.Inc()
}

// RecordSubmissionDuration записывает время выполнения сабмита.
func (m *CheckoutMetrics) RecordSubmissionDuration(duration time.Duration) {
	m.submissionDuration.Observe(duration.Seconds())
}

// RecordStepDuration записывает время выполнения шага конвейера.
func (m *CheckoutMetrics) RecordStepDuration(step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordCartRejection увеличивает счётчик рекомендательных отказов корзины.
func (m *CheckoutMetrics) RecordCartRejection(reason string) {
	m.cartRejections.WithLabelValues(reason).Inc()
}
