package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/cache"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/health"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/metrics"
	repository "github.com/aaravmahajanofficial/storefront-checkout/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/telemetry"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/backend"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const version = "1.0.0"

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing
	shutdownTracing, err := telemetry.InitTracerProvider(context.Background(), &cfg.Otel, version)
	if err != nil {
		slog.Error("❌ Error setting up tracing", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
		}
	}()

	// Cache setup, Redis when configured
	var store cache.Cache
	var loginLimiter repository.LoginRateLimiter

	if cfg.RedisConnect.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.RedisConnect)
		if err != nil {
			slog.Error("❌ Error accessing the redis instance", "error", err.Error())
			os.Exit(1)
		}
		store = cache.NewRedisCache(redisClient, &cfg.Cache)
		loginLimiter = repository.NewLoginRateLimiter(redisClient, &cfg.RateConfig)
	} else {
		store, err = cache.NewMemoryCache(&cfg.Cache)
		if err != nil {
			slog.Error("❌ Error creating the memory cache", "error", err.Error())
			os.Exit(1)
		}
		slog.Warn("Redis is not configured, drafts are kept in process memory and logins are not throttled")
	}

	defer store.Close()

	// Database setup, only the postgres cart store needs one
	var db *sql.DB

	if cfg.Cart.Store == config.CartStorePostgres {
		db, err = repository.NewDB(&cfg.Database)
		if err != nil {
			slog.Error("❌ Error accessing the database", "error", err.Error())
			os.Exit(1)
		}

		defer func() {
			if err := db.Close(); err != nil {
				slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
			} else {
				slog.Info("✅ Database connection closed")
			}
		}()
	}

	backendClient := backend.NewClient(cfg.Backend.BaseURL, backend.Options{
		Timeout:         cfg.Backend.Timeout,
		MaxFailures:     cfg.Backend.MaxFailures,
		OpenStateWindow: cfg.Backend.OpenStateWindow,
	})

	registry := service.NewCheckoutRegistry(cfg.Checkout.MaxSessions, cfg.Checkout.SessionTTL)
	drafts := service.NewDraftStore(store, cfg.Cache.DraftTTL)
	submitter := service.NewOrderSubmitter(service.NewSimulatedOrderPlacer(cfg.Checkout.SubmitDelay), cfg.Checkout.SubmitTimeout)
	checkoutService := service.NewCheckoutService(registry, drafts, service.NewCheckoutValidator(), submitter, logger)
	cartService := service.NewCartService(backendClient, registry)

	loader := handlers.NewCartLoader(cfg, store, db, registry)
	cartHandler := handlers.NewCartHandler(cartService, loader)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, loader)
	authHandler := handlers.NewAuthHandler(service.NewAuthService(backendClient, loginLimiter))
	sessions := middleware.NewSessionMiddleware([]byte(cfg.Session.SigningKey), cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.SecureCookies)

	healthChecks, err := health.NewHealthHandler(cfg, version)
	if err != nil {
		slog.Error("❌ Error setting up health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("cart_store", cfg.Cart.Store), slog.String("version", version))

	// Setup router
	routerMux := http.NewServeMux()
	handlers.RegisterRoutes(routerMux, cartHandler, checkoutHandler, authHandler)

	// Operational endpoints stay outside the session middleware
	rootMux := http.NewServeMux()
	rootMux.Handle("GET /metrics", metrics.Handler())
	rootMux.Handle("GET /health", healthChecks.Handler())
	rootMux.Handle("/api/", sessions.Handle(metrics.Middleware(routerMux)))

	// Middleware chaining
	var handler http.Handler = rootMux
	handler = middleware.Recover(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, cfg.Otel.ServiceName)

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown, long enough for an order being placed to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Checkout.SubmitTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

}
