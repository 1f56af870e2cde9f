package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `taskward_http_requests_total`) {
		t.Fatal("request counter missing from exposition")
	}
	if !strings.Contains(body, `code="404"`) {
		t.Fatal("status code label not recorded")
	}
}

func TestObserveDecision(t *testing.T) {
	m := NewMetrics()
	m.ObserveDecision("tasks:read", "allow")
	m.ObserveDecision("tasks:read", "deny")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `taskward_access_decisions_total{outcome="allow",permission="tasks:read"} 1`) {
		t.Fatalf("allow counter missing:\n%s", body)
	}
	if !strings.Contains(body, `outcome="deny"`) {
		t.Fatal("deny counter missing")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveDecision("tasks:read", "allow")
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	rec := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("nil metrics must pass through, got %d", rec.Code)
	}
}
