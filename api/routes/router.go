package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/rentflow-backend/api/controllers"
	"github.com/angelmondragon/rentflow-backend/api/middleware"
	"github.com/angelmondragon/rentflow-backend/internal/alerts"
	"github.com/angelmondragon/rentflow-backend/internal/bookings"
	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/internal/rentals"
	"github.com/angelmondragon/rentflow-backend/internal/returns"
	"github.com/angelmondragon/rentflow-backend/pkg/config"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
	"github.com/angelmondragon/rentflow-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	idempotencyStore redis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	rentalsService rentals.Service,
	ledgerService ledger.Service,
	returnsService returns.Service,
	alertsService alerts.Service,
	bookingsService bookings.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Actor(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	idempotent := middleware.Idempotency(idempotencyStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/rentals/{id}", func(r chi.Router) {
		r.Get("/", controllers.RentalDetail(rentalsService, logg))
		r.Patch("/", controllers.RentalAction(rentalsService, logg))
		r.Get("/payments", controllers.RentalPayments(ledgerService, logg))
		r.With(idempotent).Post("/payments", controllers.RentalRecordPayment(ledgerService, logg))
	})

	r.Route("/returns", func(r chi.Router) {
		r.Get("/", controllers.ReturnsList(returnsService, logg))
		r.Get("/{rentalId}", controllers.ReturnDetail(returnsService, logg))
		r.Post("/{rentalId}/inspection", controllers.ReturnSaveDraft(returnsService, logg))
		r.With(idempotent).Post("/{rentalId}/settle", controllers.ReturnSettle(returnsService, logg))
	})

	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", controllers.AlertsList(alertsService, logg))
		r.Patch("/", controllers.AlertsApply(alertsService, logg))
		r.Post("/refresh", controllers.AlertsRefresh(alertsService, logg))
	})

	r.With(idempotent).Post("/bookings", controllers.BookingCreate(bookingsService, logg))

	return r
}
