package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	"github.com/bhargavsatvara/zyqora-storefront/api/controllers"
	"github.com/bhargavsatvara/zyqora-storefront/api/routes"
	"github.com/bhargavsatvara/zyqora-storefront/internal/auth"
	"github.com/bhargavsatvara/zyqora-storefront/internal/cart"
	"github.com/bhargavsatvara/zyqora-storefront/internal/catalog"
	"github.com/bhargavsatvara/zyqora-storefront/internal/checkout"
	"github.com/bhargavsatvara/zyqora-storefront/internal/orders"
	"github.com/bhargavsatvara/zyqora-storefront/internal/visitor"
	"github.com/bhargavsatvara/zyqora-storefront/internal/wishlist"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/config"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/db"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/events"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/instance"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/kvstore"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/metrics"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/migrate"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/redis"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/storeapi"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/stripe"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/tracing"
)

const (
	serviceName     = "storefront-api"
	serviceVersion  = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instanceID := instance.GetID()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "instance": instanceID})

	shutdownTracing, err := tracing.Init(ctx, serviceName, serviceVersion, cfg.Tracing, logg)
	if err != nil {
		logg.Error(ctx, "failed to init tracing", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logg.Error(ctx, "error flushing traces", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefront(registry)

	pingers := map[string]controllers.Pinger{}

	var redisClient *redis.Client
	if cfg.Redis.Configured() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
		pingers["redis"] = redisClient
	} else if cfg.GuestStore.UsesRedis() {
		logg.Error(ctx, "redis guest store selected without redis settings", errors.New("ZYQORA_REDIS_URL or ZYQORA_REDIS_ADDR is required"))
		os.Exit(1)
	}

	var (
		guestStore kvstore.Store
		sqlStore   *kvstore.SQL
	)
	switch {
	case cfg.GuestStore.UsesSQL():
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(ctx, "error closing database", err)
			}
		}()
		if err := migrate.MaybeAutoRun(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run migrations", err)
			os.Exit(1)
		}
		pingers["db"] = dbClient
		sqlStore = kvstore.NewSQL(dbClient.DB())
		guestStore = sqlStore
	case cfg.GuestStore.UsesRedis():
		guestStore = kvstore.NewRedis(redisClient)
	default:
		logg.Warn(ctx, "guest state kept in process memory; it is lost on restart")
		guestStore = kvstore.NewMemory()
	}

	backend, err := storeapi.New(storeapi.Options{
		BaseURL:   cfg.Upstream.BaseURL,
		Timeout:   cfg.Upstream.Timeout,
		UserAgent: cfg.Upstream.UserAgent,
		Metrics:   storefrontMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create commerce backend client", err)
		os.Exit(1)
	}

	var payments checkout.PaymentConfirmer = stripe.Unconfigured{}
	if cfg.Stripe.APIKey != "" {
		stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
		if err != nil {
			logg.Error(ctx, "failed to create stripe client", err)
			os.Exit(1)
		}
		p, err := stripe.NewPayments(stripeClient)
		if err != nil {
			logg.Error(ctx, "failed to create stripe payments", err)
			os.Exit(1)
		}
		payments = p
	} else {
		logg.Warn(ctx, "stripe api key not set; checkout will refuse payments")
	}

	taxRate, err := decimal.NewFromString(cfg.Checkout.TaxRate)
	if err != nil {
		logg.Error(ctx, "invalid checkout tax rate", err)
		os.Exit(1)
	}

	bus := events.NewBus(logg)

	var broadcaster *visitor.Broadcaster
	if redisClient != nil && cfg.FeatureFlags.CrossInstanceEvents {
		broadcaster = visitor.NewBroadcaster(redisClient, instanceID, logg)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Store:       guestStore,
		Remote:      backend,
		TaxRate:     taxRate,
		GuestTTL:    cfg.GuestStore.PersistentTTL,
		Bus:         bus,
		Broadcaster: broadcaster,
		Logger:      logg,
		Metrics:     storefrontMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Store:       guestStore,
		Remote:      backend,
		Catalog:     backend,
		GuestTTL:    cfg.GuestStore.PersistentTTL,
		Bus:         bus,
		Broadcaster: broadcaster,
		Logger:      logg,
		Metrics:     storefrontMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create wishlist service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Store:         guestStore,
		Backend:       backend,
		Bus:           bus,
		PersistentTTL: cfg.GuestStore.PersistentTTL,
		SessionTTL:    cfg.GuestStore.SessionTTL,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Backend:   backend,
		Store:     guestStore,
		LookupTTL: cfg.Upstream.LookupCacheTTL,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(guestStore, backend)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Store:         guestStore,
		Cart:          cartService,
		Orders:        backend,
		Payments:      payments,
		AttemptTTL:    cfg.Checkout.IdempotencyTTL,
		RedirectDelay: cfg.Checkout.RedirectDelay,
		Logger:        logg,
		Metrics:       storefrontMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	if broadcaster != nil {
		if err := visitor.Listen(ctx, redisClient, instanceID, logg, cartService, wishlistService); err != nil {
			logg.Error(ctx, "failed to subscribe to visitor invalidations", err)
			os.Exit(1)
		}
	}

	go runJanitor(ctx, logg, cfg.Session.IdleTimeout, sqlStore, cartService, wishlistService, checkoutService)

	deps := routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Metrics:  storefrontMetrics,
		Gatherer: registry,
		Pingers:  pingers,
		Auth:     authService,
		Catalog:  catalogService,
		Cart:     cartService,
		Wishlist: wishlistService,
		Checkout: checkoutService,
		Orders:   ordersService,
	}
	if redisClient != nil {
		deps.RateLimiter = redisClient
		deps.IdempotencyStore = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:              addr,
		Handler:           tracing.Handler(routes.NewRouter(deps), "storefront.http"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", addr), "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}
