package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func ok(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func TestRouterDispatchesByMethod(t *testing.T) {
	router := NewRouter(Routes{
		SensorIngest:  ok("ingest"),
		SensorList:    ok("list"),
		SensorLatest:  ok("latest"),
		History:       ok("history"),
		Health:        ok("health"),
		EnableMetrics: true,
	})

	cases := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodPost, "/api/sensor", http.StatusOK, "ingest"},
		{http.MethodGet, "/api/sensor", http.StatusOK, "list"},
		{http.MethodGet, "/api/sensor/latest", http.StatusOK, "latest"},
		{http.MethodGet, "/api/history/2024-01-01", http.StatusOK, "history"},
		{http.MethodGet, "/health", http.StatusOK, "health"},
		{http.MethodDelete, "/api/sensor", http.StatusMethodNotAllowed, ""},
		{http.MethodPost, "/api/sensor/latest", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/api/dates", http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, rec.Code)
		}
		if tc.body != "" && rec.Body.String() != tc.body {
			t.Fatalf("%s %s: expected body %q, got %q", tc.method, tc.path, tc.body, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/sensor", nil))
	if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}

func TestRouterExposesMetrics(t *testing.T) {
	router := NewRouter(Routes{SensorList: ok("[]"), EnableMetrics: true})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sensor", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `airwatch_http_requests_total{method="GET",route="/api/sensor",status="200"}`) {
		t.Fatalf("expected request counter in exposition")
	}
}
