package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/health", "200", 0.01)
		m.StockUpserted("ok")
		m.HarvestRecorded("MAIS", 500)
		m.SetLowStock(2)
	})
}

func TestRecording(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", "/api/v1/home", "200", 0.02)
	m.ObserveRequest("GET", "/api/v1/home", "200", 0.03)
	m.StockUpserted("ok")
	m.StockUpserted("retried")
	m.HarvestRecorded("SOJA", 250.5)
	m.HarvestRecorded("SOJA", 100)
	m.SetLowStock(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/home", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StockUpserts.WithLabelValues("retried")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HarvestsRecorded.WithLabelValues("SOJA")))
	assert.Equal(t, 350.5, testutil.ToFloat64(m.HarvestedKilograms.WithLabelValues("SOJA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LowStockWarehouses))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.StockUpserted("ok")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agricoop_stock_upserts_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
