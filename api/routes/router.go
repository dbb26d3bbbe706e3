package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bhargavsatvara/zyqora-storefront/api/controllers"
	"github.com/bhargavsatvara/zyqora-storefront/api/middleware"
	"github.com/bhargavsatvara/zyqora-storefront/internal/auth"
	"github.com/bhargavsatvara/zyqora-storefront/internal/cart"
	"github.com/bhargavsatvara/zyqora-storefront/internal/catalog"
	"github.com/bhargavsatvara/zyqora-storefront/internal/checkout"
	"github.com/bhargavsatvara/zyqora-storefront/internal/orders"
	"github.com/bhargavsatvara/zyqora-storefront/internal/wishlist"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/config"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/metrics"
	pkgredis "github.com/bhargavsatvara/zyqora-storefront/pkg/redis"
)

// Deps is everything the HTTP surface needs. A nil RateLimiter or
// IdempotencyStore disables that protection; a nil Gatherer hides /metrics.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	Metrics          *metrics.Storefront
	Gatherer         prometheus.Gatherer
	RateLimiter      middleware.WindowLimiter
	IdempotencyStore pkgredis.IdempotencyStore
	Pingers          map[string]controllers.Pinger

	Auth     auth.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Wishlist wishlist.Service
	Checkout checkout.Service
	Orders   orders.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	limiter := d.RateLimiter
	idem := middleware.Idempotency(d.IdempotencyStore, cfg.Checkout.IdempotencyTTL, logg)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Metrics(d.Metrics),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Pingers))
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, cfg.GuestStore.PersistentTTL, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(middleware.LoginPolicy(cfg.AuthRateLimit), limiter, logg)).
				Post("/login", controllers.AuthLogin(d.Auth, logg))
			r.With(middleware.AuthRateLimit(middleware.SignupPolicy(cfg.AuthRateLimit), limiter, logg), idem).
				Post("/signup", controllers.AuthSignup(d.Auth, logg))
			r.With(middleware.AuthRateLimit(middleware.ForgotPasswordPolicy(cfg.AuthRateLimit), limiter, logg)).
				Post("/forgot-password", controllers.AuthForgotPassword(d.Auth, logg))
			r.Post("/reset-password/{token}", controllers.AuthResetPassword(d.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
			r.Get("/me", controllers.AuthMe(d.Auth, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(d.Catalog, logg))
			r.Get("/featured", controllers.ProductFeatured(d.Catalog, logg))
			r.Get("/{id}", controllers.ProductDetail(d.Catalog, logg))
		})
		r.Get("/lookups/{kind}", controllers.LookupList(d.Catalog, logg))
		r.Route("/reviews/{productId}", func(r chi.Router) {
			r.Get("/", controllers.ReviewList(d.Catalog, logg))
			r.With(idem).Post("/", controllers.ReviewCreate(d.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.Cart, logg))
			r.Delete("/", controllers.CartClear(d.Cart, logg))
			r.Post("/items", controllers.CartAddItem(d.Cart, logg))
			r.Patch("/items", controllers.CartUpdateItem(d.Cart, logg))
			r.Delete("/items", controllers.CartRemoveItem(d.Cart, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(d.Wishlist, logg))
			r.Post("/", controllers.WishlistAdd(d.Wishlist, logg))
			r.Get("/{productId}", controllers.WishlistContains(d.Wishlist, logg))
			r.Delete("/{productId}", controllers.WishlistRemove(d.Wishlist, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutCurrent(d.Checkout, logg))
			r.With(idem).Post("/", controllers.CheckoutSubmit(d.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(d.Orders, logg))
			r.Get("/{id}", controllers.OrderDetail(d.Orders, logg))
			r.Get("/{id}/invoice", controllers.OrderInvoice(d.Orders, logg))
		})
	})

	return r
}
