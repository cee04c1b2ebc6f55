package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmtolibas/cafeline-backend/api/controllers"
	"github.com/jmtolibas/cafeline-backend/api/middleware"
	cartsvc "github.com/jmtolibas/cafeline-backend/internal/cart"
	"github.com/jmtolibas/cafeline-backend/internal/catalog"
	checkoutsvc "github.com/jmtolibas/cafeline-backend/internal/checkout"
	ordersvc "github.com/jmtolibas/cafeline-backend/internal/orders"
	"github.com/jmtolibas/cafeline-backend/pkg/config"
	"github.com/jmtolibas/cafeline-backend/pkg/db"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
	"github.com/jmtolibas/cafeline-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService ordersvc.Service,
	possession ordersvc.PossessionStore,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, logg))
		r.Use(middleware.OptionalAuth(cfg.Auth, logg))

		r.Get("/menu", controllers.Menu(catalogService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(cartService, logg))
			r.Post("/lines", controllers.AddCartLine(cartService, logg))
			r.Patch("/lines/{localID}", controllers.UpdateCartLine(cartService, logg))
			r.Delete("/lines/{localID}", controllers.RemoveCartLine(cartService, logg))
			r.Delete("/", controllers.ClearCart(cartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/my", controllers.MyOrders(ordersService, possession, logg))
			r.Get("/{orderCode}", controllers.GetOrder(ordersService, possession, logg))
			r.Post("/{orderCode}/reorder", controllers.Reorder(ordersService, possession, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Auth, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(ordersService, logg))
			r.Patch("/{orderCode}/status", controllers.AdminUpdateOrderStatus(ordersService, logg))
			r.Post("/{orderCode}/mark-paid", controllers.AdminMarkOrderPaid(ordersService, logg))
		})
	})

	return r
}
