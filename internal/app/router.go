package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/toyshop-pos/toyshop/internal/auth"
	"github.com/toyshop-pos/toyshop/internal/catalog/categories"
	"github.com/toyshop-pos/toyshop/internal/catalog/products"
	"github.com/toyshop-pos/toyshop/internal/inventory"
	"github.com/toyshop-pos/toyshop/internal/reports"
	"github.com/toyshop-pos/toyshop/internal/returns"
	"github.com/toyshop-pos/toyshop/internal/sales"
	"github.com/toyshop-pos/toyshop/internal/settings"
	"github.com/toyshop-pos/toyshop/internal/users"
	"github.com/toyshop-pos/toyshop/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthHandler       *auth.Handler
	AuthMiddleware    *auth.Middleware
	UsersHandler      *users.Handler
	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	InventoryHandler  *inventory.Handler
	SalesHandler      *sales.Handler
	ReturnsHandler    *returns.Handler
	SettingsHandler   *settings.Handler
	ReportsHandler    *reports.Handler
	JobsHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with store defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", params.AuthHandler.MountRoutes)

		api.Group(func(priv chi.Router) {
			priv.Use(params.AuthMiddleware.RequireAuth)

			priv.Route("/users", params.UsersHandler.MountRoutes)
			priv.Route("/products", params.ProductsHandler.MountRoutes)
			priv.Route("/categories", params.CategoriesHandler.MountRoutes)
			priv.Route("/inventory", params.InventoryHandler.MountRoutes)
			priv.Route("/sales", params.SalesHandler.MountRoutes)
			priv.Route("/returns", params.ReturnsHandler.MountRoutes)
			priv.Route("/settings", params.SettingsHandler.MountRoutes)
			priv.Route("/reports", params.ReportsHandler.MountRoutes)
			priv.Route("/jobs", params.JobsHandler.MountRoutes)
		})
	})

	return r
}
