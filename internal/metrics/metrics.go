package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agricoop"

// Metrics owns the collectors exposed on /metrics. All recording methods are
// safe on a nil receiver so tests and tools can pass nil.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	StockUpserts        *prometheus.CounterVec
	HarvestsRecorded    *prometheus.CounterVec
	HarvestedKilograms  *prometheus.CounterVec
	LowStockWarehouses  prometheus.Gauge
}

// New creates the collectors on a private registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		StockUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_upserts_total",
			Help:      "Stock ledger writes by outcome.",
		}, []string{"outcome"}),
		HarvestsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "harvests_recorded_total",
			Help:      "Harvest records created by crop type.",
		}, []string{"crop"}),
		HarvestedKilograms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "harvested_kilograms_total",
			Help:      "Kilograms recorded through the API by crop type.",
		}, []string{"crop"}),
		LowStockWarehouses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_stock_warehouses",
			Help:      "Warehouses below their alert threshold at the last listing.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StockUpserts,
		m.HarvestsRecorded,
		m.HarvestedKilograms,
		m.LowStockWarehouses,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// StockUpserted records a stock ledger write; outcome is "ok", "retried"
// or "error".
func (m *Metrics) StockUpserted(outcome string) {
	if m == nil {
		return
	}
	m.StockUpserts.WithLabelValues(outcome).Inc()
}

// HarvestRecorded records a new harvest of kilograms of crop.
func (m *Metrics) HarvestRecorded(crop string, kilograms float64) {
	if m == nil {
		return
	}
	m.HarvestsRecorded.WithLabelValues(crop).Inc()
	m.HarvestedKilograms.WithLabelValues(crop).Add(kilograms)
}

// SetLowStock publishes the number of warehouses in alert.
func (m *Metrics) SetLowStock(n int) {
	if m == nil {
		return
	}
	m.LowStockWarehouses.Set(float64(n))
}
