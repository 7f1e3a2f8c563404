package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/rentflow-backend/pkg/logger"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	handler := RequestID(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	req.Header.Set(requestIDHeader, "req-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/alerts", nil))
	if resp.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/alerts", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestActorStoresHeaderInContext(t *testing.T) {
	var seen string
	handler := Actor(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ActorIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	req.Header.Set(ActorHeader, " desk-7 ")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "desk-7" {
		t.Fatalf("expected actor desk-7, got %q", seen)
	}
}

func TestLoggingRecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(Logging(testLogger(), httpMetrics))
	r.Patch("/rentals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPatch, "/rentals/42", nil))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var route string
	for _, mf := range mfs {
		if mf.GetName() != "rentflow_http_requests_total" {
			continue
		}
		for _, label := range mf.GetMetric()[0].GetLabel() {
			if label.GetName() == "route" {
				route = label.GetValue()
			}
		}
	}
	if route != "/rentals/{id}" {
		t.Fatalf("expected route pattern label, got %q", route)
	}
}
