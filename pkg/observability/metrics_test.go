package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/rhuss/opexcore/pkg/api"
)

// TestMetricsRegistered verifies that all metrics are registered in the
// default registry once they have been observed.
func TestMetricsRegistered(t *testing.T) {
	PanelRequestsTotal.WithLabelValues("marzban", "ListUsers", "ok").Inc()
	PanelRequestDuration.WithLabelValues("marzban", "ListUsers").Observe(0.1)
	PanelRetriesTotal.WithLabelValues("marzban", "ListUsers").Inc()
	PanelInFlight.WithLabelValues("marzban").Set(0)
	RequestsTotal.WithLabelValues("GET", "2xx").Inc()
	RequestDuration.WithLabelValues("GET").Observe(0.1)
	ToolCallsTotal.WithLabelValues("list_users", "ok").Inc()
	AuthRejectedTotal.WithLabelValues("rate_limited").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"opexcore_panel_requests_total":           false,
		"opexcore_panel_request_duration_seconds": false,
		"opexcore_panel_retries_total":            false,
		"opexcore_panel_requests_in_flight":       false,
		"opexcore_http_requests_total":            false,
		"opexcore_http_request_duration_seconds":  false,
		"opexcore_tool_calls_total":               false,
		"opexcore_auth_rejected_total":            false,
	}
	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not found in default registry", name)
		}
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"auth", api.NewAuthenticationError(401, "expired"), "authentication_error"},
		{"timeout", api.NewTimeoutError("deadline", nil), "transport_timeout"},
		{"plain", errors.New("x"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Outcome(tt.err); got != tt.want {
				t.Errorf("Outcome() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObserveCall(t *testing.T) {
	before := counterValue(t, PanelRequestsTotal, "guard", "Login", "authentication_error")
	beforeHist := histogramCount(t, PanelRequestDuration, "guard", "Login")

	ObserveCall(api.KindGuard, "Login", api.NewAuthenticationError(401, "bad"), 20*time.Millisecond)

	if d := counterValue(t, PanelRequestsTotal, "guard", "Login", "authentication_error") - before; d != 1 {
		t.Errorf("expected counter delta 1, got %f", d)
	}
	if d := histogramCount(t, PanelRequestDuration, "guard", "Login") - beforeHist; d != 1 {
		t.Errorf("expected histogram delta 1, got %d", d)
	}
}

func TestMiddlewareRecordsRequestCount(t *testing.T) {
	before := counterValue(t, RequestsTotal, "POST", "4xx")
	beforeHist := histogramCount(t, RequestDuration, "POST")

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/mcp", nil))

	if d := counterValue(t, RequestsTotal, "POST", "4xx") - before; d != 1 {
		t.Errorf("expected 4xx count to increase by 1, got delta=%f", d)
	}
	if d := histogramCount(t, RequestDuration, "POST") - beforeHist; d != 1 {
		t.Errorf("expected one duration sample, got delta=%d", d)
	}
}

func TestStatusWriterFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

	sw.Flush()

	if !rec.Flushed {
		t.Error("expected underlying writer to be flushed")
	}
}

// counterValue reads the current value of a CounterVec for the given labels.
func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting counter metric: %v", err)
	}
	if err := c.Write(m); err != nil {
		t.Fatalf("writing counter metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

// histogramCount reads the observation count from a HistogramVec.
func histogramCount(t *testing.T, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs, err := hv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting histogram metric: %v", err)
	}
	if err := obs.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}
