package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// Валидатор
	ValidationsTotal   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
	ValidationBatchSize prometheus.Histogram

	// Краулер
	CrawlRunsTotal      *prometheus.CounterVec
	CrawlCandidatesFound *prometheus.CounterVec
	CrawlDuration       *prometheus.HistogramVec

	// Планировщик
	TaskExecutionsTotal *prometheus.CounterVec
	TaskDuration        *prometheus.HistogramVec
	TaskSkippedTotal    *prometheus.CounterVec

	// Пул прокси
	ActiveProxies   *prometheus.GaugeVec
	StoreOpDuration *prometheus.HistogramVec

	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		ValidationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validations_total",
				Help:      "Total number of proxy validation attempts",
			},
			[]string{"result"}, // success, failed
		),

		ValidationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validation_duration_seconds",
				Help:      "Duration of a single proxy validation check",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50},
			},
			[]string{"result"},
		),

		ValidationBatchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validation_batch_size",
				Help:      "Number of proxies in a validation batch",
				Buckets:   []float64{1, 10, 25, 50, 100, 200, 500},
			},
		),

		CrawlRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "crawl_runs_total",
				Help:      "Total number of adapter crawl runs",
			},
			[]string{"adapter", "result"},
		),

		CrawlCandidatesFound: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "crawl_candidates_found_total",
				Help:      "Total number of candidate proxies discovered",
			},
			[]string{"adapter"},
		),

		CrawlDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "crawl_duration_seconds",
				Help:      "Duration of one adapter run",
				Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"adapter"},
		),

		TaskExecutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "task_executions_total",
				Help:      "Total number of scheduled task executions",
			},
			[]string{"task", "result"},
		),

		TaskDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "task_duration_seconds",
				Help:      "Duration of a task execution",
				Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"task"},
		),

		TaskSkippedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "task_skipped_total",
				Help:      "Total number of ticks skipped due to single-flight guard",
			},
			[]string{"task"},
		),

		ActiveProxies: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "active_proxies",
				Help:      "Current number of SUCCESS-status proxies",
			},
			[]string{"protocol"},
		),

		StoreOpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of a Store operation",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get возвращает глобальные метрики, инициализируя их при необходимости
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("proxypool", "")
	}
	return defaultMetrics
}

// RecordValidation записывает результат одной проверки прокси
func (m *Metrics) RecordValidation(success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failed"
	}
	m.ValidationsTotal.WithLabelValues(result).Inc()
	m.ValidationDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordCrawl записывает результат одного прогона адаптера
func (m *Metrics) RecordCrawl(adapter string, success bool, candidates int, duration time.Duration) {
	result := "success"
	if !success {
		result = "error"
	}
	m.CrawlRunsTotal.WithLabelValues(adapter, result).Inc()
	m.CrawlCandidatesFound.WithLabelValues(adapter).Add(float64(candidates))
	m.CrawlDuration.WithLabelValues(adapter).Observe(duration.Seconds())
}

// RecordTask записывает выполнение задачи планировщика
func (m *Metrics) RecordTask(task string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failed"
	}
	m.TaskExecutionsTotal.WithLabelValues(task, result).Inc()
	m.TaskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

// RecordTaskSkipped записывает пропущенный тик single-flight защиты
func (m *Metrics) RecordTaskSkipped(task string) {
	m.TaskSkippedTotal.WithLabelValues(task).Inc()
}

// SetActiveProxies обновляет gauge активных прокси по протоколу
func (m *Metrics) SetActiveProxies(protocol string, count int) {
	m.ActiveProxies.WithLabelValues(protocol).Set(float64(count))
}

// RecordStoreOp записывает длительность операции Store
func (m *Metrics) RecordStoreOp(operation string, duration time.Duration) {
	m.StoreOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /api/metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
