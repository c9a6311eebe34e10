package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/auth"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/cart"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/checkout"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/client"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/config"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/handlers"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/middleware"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/services"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/storage"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/telemetry"
	"github.com/gorilla/mux"
)

const (
	serviceName = "swaadly-storefront"
	version     = "1.0.0"
)

func main() {
	cfg := config.LoadConfig()

	slog.Info("Starting storefront",
		"service", serviceName,
		"version", version,
		"port", cfg.Port,
		"environment", cfg.Environment)

	store, err := storage.New(cfg.StorageBackend, cfg.DataDir)
	if err != nil {
		slog.Error("Failed to open local storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	tel := (&telemetry.Telemetry{}).InitMetrics(ctx, serviceName, cfg.MetricsExporter, cfg.MetricsPort)
	metrics := telemetry.NewStorefrontTelemetry()
	if err := metrics.InitializeTelemetry(tel.Meter()); err != nil {
		slog.Warn("Storefront metrics unavailable", "error", err)
	}

	tokens := auth.NewTokenStore(store)
	apiClient := client.NewAPIClient(client.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: config.Duration("API_TIMEOUT", cfg.APITimeout, 30*time.Second),
		Metrics: metrics,
	}, tokens)

	session := auth.NewSession(apiClient, tokens)
	apiClient.SetOnSessionExpired(session.Expire)

	cartStore := cart.NewStore(store)
	reconciler := checkout.NewReconciler(apiClient, cartStore, checkout.Config{
		RateQuoteTTL:         config.Duration("RATE_QUOTE_TTL", cfg.RateQuoteTTL, 5*time.Minute),
		CacheCleanupInterval: config.Duration("CACHE_CLEANUP_INTERVAL", cfg.CacheCleanupInterval, time.Minute),
		Orders:               metrics,
	})

	authService := services.NewAuthService(apiClient, session)
	addressService := services.NewAddressService(apiClient, reconciler)
	verifyHandler := handlers.NewVerifyHandler(authService)

	// Checkout and verification state belongs to whoever was signed in
	session.OnChange(func(bool) {
		reconciler.Reset()
		verifyHandler.Reset()
	})
	go session.Init(ctx)

	otpLimiter := middleware.NewOTPRateLimiter(middleware.ParseOTPRateLimitConfig(cfg))

	router := &handlers.Router{
		Health:   handlers.NewHealthHandler(apiClient, store),
		Products: handlers.NewProductHandler(apiClient),
		Cart:     handlers.NewCartHandler(cartStore, apiClient),
		Checkout: handlers.NewCheckoutHandler(reconciler, apiClient),
		Orders:   handlers.NewOrderHandler(apiClient),
		Address:  handlers.NewAddressHandler(addressService),
		Auth: handlers.NewAuthHandler(authService, session, handlers.CookieConfig{
			AccessToken: cfg.AccessTokenCookie,
			User:        cfg.UserCookie,
			Secure:      cfg.IsProduction(),
		}),
		Verify:  verifyHandler,
		Account: handlers.NewAccountHandler(authService),
		Pages:   handlers.NewPageHandler(session),

		Session:     session,
		OTPLimiter:  otpLimiter,
		Guard:       middleware.DefaultRouteGuardConfig(cfg.AccessTokenCookie, cfg.UserCookie),
		Middlewares: []mux.MiddlewareFunc{telemetry.NewTelemetryMiddleware(metrics).Middleware},

		TrustProxyHeaders: config.Bool("TRUST_PROXY_HEADERS", cfg.TrustProxyHeaders, false),
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Build(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server ready to accept connections", "address", server.Addr, "backend", cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	otpLimiter.Stop()
	reconciler.Close()
	tel.Close(shutdownCtx)
	if err := store.Close(); err != nil {
		slog.Error("Failed to close local storage", "error", err)
	}

	slog.Info("Server stopped")
}
