package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// histogramFor returns the histogram series of vec matching labels, or nil.
func histogramFor(t *testing.T, vec *prometheus.HistogramVec, labels ...string) *dto.Histogram {
	t.Helper()
	obs, err := vec.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	m := &dto.Metric{}
	require.NoError(t, obs.(prometheus.Metric).Write(m))
	return m.GetHistogram()
}

func meteredRouter(service string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get("/cliente", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	r.Delete("/cliente/{email}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return r
}

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	const svc = "metrics-pattern"
	r := meteredRouter(svc)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cliente/"+email, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(
		httpRequestsTotal.WithLabelValues(svc, http.MethodDelete, "/cliente/{email}", "404")))
}

func TestPrometheusMetrics_DefaultStatusIs200(t *testing.T) {
	const svc = "metrics-default"
	r := meteredRouter(svc)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cliente", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(
		httpRequestsTotal.WithLabelValues(svc, http.MethodGet, "/cliente", "200")))
}

func TestPrometheusMetrics_ObservesDurationAndSize(t *testing.T) {
	const svc = "metrics-histograms"
	r := meteredRouter(svc)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cliente", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cliente", nil))

	dur := histogramFor(t, httpRequestDuration, svc, http.MethodGet, "/cliente")
	assert.Equal(t, uint64(2), dur.GetSampleCount())

	size := histogramFor(t, httpResponseSize, svc, http.MethodGet, "/cliente")
	assert.Equal(t, uint64(2), size.GetSampleCount())
	assert.Equal(t, float64(2*len(`{"data":[]}`)), size.GetSampleSum())
}

func TestPrometheusMetrics_UnmatchedRoute(t *testing.T) {
	const svc = "metrics-unmatched"
	r := meteredRouter(svc)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/.env", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(
		httpRequestsTotal.WithLabelValues(svc, http.MethodGet, "unmatched", "404")))
}

func TestPrometheusMetrics_InFlightReturnsToZero(t *testing.T) {
	const svc = "metrics-inflight"
	gauge := httpRequestsInFlight.WithLabelValues(svc)

	var during float64
	h := PrometheusMetrics(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(gauge)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cliente", nil))

	assert.Equal(t, 1.0, during)
	assert.Equal(t, 0.0, testutil.ToFloat64(gauge))
}
