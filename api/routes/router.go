package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusbite/campusbite-backend/api/controllers"
	cartcontrollers "github.com/campusbite/campusbite-backend/api/controllers/cart"
	ordercontrollers "github.com/campusbite/campusbite-backend/api/controllers/orders"
	"github.com/campusbite/campusbite-backend/api/middleware"
	cartsvc "github.com/campusbite/campusbite-backend/internal/cart"
	orderssvc "github.com/campusbite/campusbite-backend/internal/orders"
	"github.com/campusbite/campusbite-backend/pkg/config"
	"github.com/campusbite/campusbite-backend/pkg/enums"
	"github.com/campusbite/campusbite-backend/pkg/logger"
	"github.com/campusbite/campusbite-backend/pkg/storage/gcs"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	CartStore    *cartsvc.Store
	OrderService orderssvc.Service
	OrderQueries *orderssvc.QueryService
	Uploader     gcs.Uploader
	Registry     *prometheus.Registry
	Pingers      map[string]controllers.Pinger
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleCustomer), logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.Fetch(deps.CartStore, logg))
				r.Delete("/", cartcontrollers.Clear(deps.CartStore, logg))
				r.Post("/items", cartcontrollers.AddItem(deps.CartStore, logg))
				r.Patch("/items", cartcontrollers.UpdateItem(deps.CartStore, logg))
				r.Delete("/items/{itemID}", cartcontrollers.RemoveItem(deps.CartStore, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", ordercontrollers.Submit(deps.OrderService, deps.CartStore, logg))
				r.Get("/", ordercontrollers.List(deps.OrderQueries, logg))
				r.Get("/{orderID}", ordercontrollers.Detail(deps.OrderQueries, logg))
				r.Post("/{orderID}/cancel", ordercontrollers.Cancel(deps.OrderService, logg))
			})
		})

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleVendor), logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.VendorList(deps.OrderQueries, logg))
				r.Post("/{orderID}/advance", ordercontrollers.VendorAdvance(deps.OrderService, logg))
			})

			r.Post("/media", controllers.MediaUpload(deps.Uploader, cfg.GCS.MaxUploadMB, logg))
		})
	})

	return r
}
