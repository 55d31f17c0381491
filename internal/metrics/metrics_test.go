package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatherMetric collects metrics from the registry and finds one by name.
func gatherMetric(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func labelsOf(m *dto.Metric) map[string]string {
	out := make(map[string]string)
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Put("/api/content/{key}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/content/hero-title", http.NoBody))

	f := gatherMetric(t, m.reg, "http_requests_total")
	require.NotNil(t, f)
	require.Len(t, f.GetMetric(), 1)

	labels := labelsOf(f.GetMetric()[0])
	assert.Equal(t, http.MethodPut, labels["method"])
	assert.Equal(t, "/api/content/{key}", labels["route"])
	assert.Equal(t, "401", labels["status"])
	assert.InDelta(t, 1, f.GetMetric()[0].GetCounter().GetValue(), 0)
}

func TestMiddleware_UnmatchedPathsShareOneLabel(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)

	for _, p := range []string{"/a", "/b/c", "/d"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, http.NoBody))
	}

	f := gatherMetric(t, m.reg, "http_requests_total")
	require.NotNil(t, f)
	require.Len(t, f.GetMetric(), 1)
	assert.Equal(t, unmatchedRoute, labelsOf(f.GetMetric()[0])["route"])
	assert.InDelta(t, 3, f.GetMetric()[0].GetCounter().GetValue(), 0)
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.IncLogin("success")
	m.IncLogin("failure")
	m.IncLogin("failure")
	m.IncContentWrite("put")
	m.IncRateLimited()
	m.IncPanic()

	logins := gatherMetric(t, m.reg, "auth_login_total")
	require.NotNil(t, logins)
	byResult := map[string]float64{}
	for _, metric := range logins.GetMetric() {
		byResult[labelsOf(metric)["result"]] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"success": 1, "failure": 2}, byResult)

	assert.NotNil(t, gatherMetric(t, m.reg, "content_writes_total"))
	assert.NotNil(t, gatherMetric(t, m.reg, "http_requests_rate_limited_total"))
	assert.NotNil(t, gatherMetric(t, m.reg, "http_panic_total"))
}

func TestHandler_ServesExposition(t *testing.T) {
	m := New()
	m.IncContentWrite("seed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Result().Body)
	assert.True(t, strings.Contains(string(body), `content_writes_total{op="seed"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}
