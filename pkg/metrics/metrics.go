package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор Prometheus метрик сервиса.
// Все методы безопасны для вызова на nil, поэтому компоненты могут работать с выключенными метриками.
type Metrics struct {
	service string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbQueryErrors   *prometheus.CounterVec
	dbConnections   *prometheus.GaugeVec

	reservationsTotal  *prometheus.CounterVec
	allocationLockWait *prometheus.HistogramVec
	statusTransitions  *prometheus.CounterVec
	cacheRequests      *prometheus.CounterVec
}

// New создает метрики и регистрирует их в глобальном реестре (для promhttp.Handler)
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики и регистрирует их в указанном реестре.
// С nil реестром метрики не регистрируются (тесты).
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		service: serviceName,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"service", "method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "route"},
		),
		dbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query latency by operation.",
				Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"service", "operation"},
		),
		dbQueryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_query_errors_total",
				Help: "Database query errors by operation.",
			},
			[]string{"service", "operation"},
		),
		dbConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_connections",
				Help: "Database connection pool state.",
			},
			[]string{"service", "state"},
		),
		reservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bay_reservations_total",
				Help: "Bay reservation attempts by outcome.",
			},
			[]string{"service", "outcome"},
		),
		allocationLockWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bay_allocation_lock_wait_seconds",
				Help:    "Time spent waiting for the allocation lock.",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"service", "backend"},
		),
		statusTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_status_transitions_total",
				Help: "Booking status transitions by target status.",
			},
			[]string{"service", "status"},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partner_cache_requests_total",
				Help: "Partner schedule/capacity cache lookups.",
			},
			[]string{"service", "cache", "result"},
		),
	}

	if reg == nil {
		return m
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbQueryErrors,
		m.dbConnections,
		m.reservationsTotal,
		m.allocationLockWait,
		m.statusTransitions,
		m.cacheRequests,
	)

	return m
}

// ObserveHTTPRequest записывает результат HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(m.service, method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(m.service, method, route).Observe(duration.Seconds())
}

// ObserveDBQuery записывает длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(m.service, operation).Observe(duration.Seconds())
	if err != nil {
		m.dbQueryErrors.WithLabelValues(m.service, operation).Inc()
	}
}

// SetDBConnections обновляет состояние пула соединений
func (m *Metrics) SetDBConnections(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues(m.service, "open").Set(float64(open))
	m.dbConnections.WithLabelValues(m.service, "in_use").Set(float64(inUse))
	m.dbConnections.WithLabelValues(m.service, "idle").Set(float64(idle))
}

// IncReservation учитывает попытку резервирования бокса
func (m *Metrics) IncReservation(outcome string) {
	if m == nil {
		return
	}
	m.reservationsTotal.WithLabelValues(m.service, outcome).Inc()
}

// ObserveLockWait записывает время ожидания блокировки аллокатора
func (m *Metrics) ObserveLockWait(backend string, duration time.Duration) {
	if m == nil {
		return
	}
	m.allocationLockWait.WithLabelValues(m.service, backend).Observe(duration.Seconds())
}

// IncStatusTransition учитывает переход бронирования в новый статус
func (m *Metrics) IncStatusTransition(status string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(m.service, status).Inc()
}

// IncCache учитывает обращение к кешу (result: hit, miss, error)
func (m *Metrics) IncCache(cache, result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(m.service, cache, result).Inc()
}
