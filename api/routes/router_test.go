package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/rentflow-backend/internal/alerts"
	"github.com/angelmondragon/rentflow-backend/internal/bookings"
	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/internal/rentals"
	"github.com/angelmondragon/rentflow-backend/internal/returns"
	"github.com/angelmondragon/rentflow-backend/pkg/config"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
)

type routeRentals struct {
	rentals.Service
	applied []enums.RentalAction
}

func (s *routeRentals) Get(_ context.Context, id int64) (*rentals.View, error) {
	return &rentals.View{ID: id}, nil
}

func (s *routeRentals) Apply(_ context.Context, id int64, action enums.RentalAction) (*rentals.View, error) {
	s.applied = append(s.applied, action)
	return &rentals.View{ID: id, Status: enums.RentalStatusCompleted}, nil
}

type routeLedger struct {
	ledger.Service
}

func (s *routeLedger) ListPayments(context.Context, int64) ([]models.Payment, error) {
	return []models.Payment{{ID: 1}}, nil
}

type routeReturns struct {
	returns.Service
	settles int
}

func (s *routeReturns) List(_ context.Context, input rentals.ListInput) (*rentals.ListResult, error) {
	return &rentals.ListResult{Items: []rentals.View{}}, nil
}

func (s *routeReturns) Settle(_ context.Context, rentalID int64, _ returns.SettleInput) (*returns.Settlement, error) {
	s.settles++
	return &returns.Settlement{Rental: rentals.View{ID: rentalID}}, nil
}

type routeAlerts struct {
	alerts.Service
	refreshed bool
}

func (s *routeAlerts) Refresh(context.Context) (*alerts.Summary, error) {
	s.refreshed = true
	return &alerts.Summary{RanAt: time.Now()}, nil
}

type routeBookings struct{}

func (routeBookings) Create(context.Context, bookings.CreateInput) (*bookings.Result, error) {
	return &bookings.Result{RentalID: 1, PayableTotal: decimal.NewFromInt(1200)}, nil
}

type memoryStore struct {
	data map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return scope + ":" + id
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type fixture struct {
	handler http.Handler
	rentals *routeRentals
	returns *routeReturns
	alerts  *routeAlerts
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	reg := prometheus.NewRegistry()
	f := fixture{
		rentals: &routeRentals{},
		returns: &routeReturns{},
		alerts:  &routeAlerts{},
	}
	f.handler = NewRouter(
		cfg,
		logg,
		okPinger{},
		okPinger{},
		&memoryStore{data: map[string]string{}},
		reg,
		metrics.NewHTTPMetrics(reg),
		f.rentals,
		&routeLedger{},
		f.returns,
		f.alerts,
		routeBookings{},
	)
	return f
}

func serve(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestRouterHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		if resp := serve(f.handler, http.MethodGet, path, "", nil); resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
	resp := serve(f.handler, http.MethodGet, "/metrics", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "rentflow_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}

func TestRouterRentalRoutes(t *testing.T) {
	f := newFixture(t)

	resp := serve(f.handler, http.MethodPatch, "/rentals/42", `{"action":"return"}`, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("patch rental: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(f.rentals.applied) != 1 || f.rentals.applied[0] != enums.RentalActionReturn {
		t.Fatalf("expected one return action, got %v", f.rentals.applied)
	}

	if resp := serve(f.handler, http.MethodGet, "/rentals/42", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("get rental: expected 200 got %d", resp.Code)
	}
	if resp := serve(f.handler, http.MethodGet, "/rentals/42/payments", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("list payments: expected 200 got %d", resp.Code)
	}
}

func TestRouterSettleReplaysWithIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	headers := map[string]string{"Idempotency-Key": "settle-1"}

	first := serve(f.handler, http.MethodPost, "/returns/9/settle", `{"issueNoc":true}`, headers)
	second := serve(f.handler, http.MethodPost, "/returns/9/settle", `{"issueNoc":true}`, headers)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200/200 got %d/%d", first.Code, second.Code)
	}
	if f.returns.settles != 1 {
		t.Fatalf("expected settle to run once, ran %d", f.returns.settles)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected replayed body")
	}
}

func TestRouterReturnsAndAlerts(t *testing.T) {
	f := newFixture(t)

	resp := serve(f.handler, http.MethodGet, "/returns?scope=recent", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("returns list: expected 200 got %d", resp.Code)
	}
	var env struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil || !env.OK {
		t.Fatalf("expected ok envelope, got %s", resp.Body.String())
	}

	if resp := serve(f.handler, http.MethodPost, "/alerts/refresh", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("alerts refresh: expected 200 got %d", resp.Code)
	}
	if !f.alerts.refreshed {
		t.Fatal("expected refresh to run")
	}

	if resp := serve(f.handler, http.MethodPost, "/bookings", `{"planId":1}`, nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("bookings: expected 400 for incomplete body got %d", resp.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	f := newFixture(t)
	if resp := serve(f.handler, http.MethodGet, "/api/v1/cart", "", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

