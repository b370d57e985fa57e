package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/icecream-backend/api/controllers"
	"github.com/angelmondragon/icecream-backend/api/middleware"
	"github.com/angelmondragon/icecream-backend/internal/catalog"
	"github.com/angelmondragon/icecream-backend/internal/orders"
	"github.com/angelmondragon/icecream-backend/internal/storeflavors"
	"github.com/angelmondragon/icecream-backend/pkg/config"
	"github.com/angelmondragon/icecream-backend/pkg/logger"
	"github.com/angelmondragon/icecream-backend/pkg/metrics"
)

// Deps groups what the router wires into controllers.
type Deps struct {
	Orders         orders.Service
	Catalog        catalog.Service
	StoreFlavors   storeflavors.Service
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	Readiness      map[string]controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Post("/orders", controllers.CreateOrder(deps.Orders, logg))
	r.Get("/orders", controllers.ListOrders(deps.Orders, cfg.Orders.DefaultLimit, false, logg))
	r.Get("/all-orders", controllers.ListOrders(deps.Orders, cfg.Orders.AllOrdersDefaultLimit, true, logg))

	r.Route("/flavors", func(r chi.Router) {
		r.Get("/", controllers.ListFlavors(deps.Catalog, logg))
		r.Post("/", controllers.AddFlavor(deps.Catalog, logg))
		r.Put("/{name}", controllers.UpdateFlavor(deps.Catalog, logg))
		r.Delete("/{name}", controllers.DeleteFlavor(deps.Catalog, logg))
	})

	r.Route("/store-flavors/{store}", func(r chi.Router) {
		r.Get("/", controllers.ListStoreFlavors(deps.StoreFlavors, logg))
		r.Post("/", controllers.SetStoreFlavors(deps.StoreFlavors, logg))
	})

	return r
}
