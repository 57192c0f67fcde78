package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/onecard/internal/allocation"
	"github.com/mmynk/onecard/internal/auth"
	"github.com/mmynk/onecard/internal/config"
	"github.com/mmynk/onecard/internal/metrics"
	"github.com/mmynk/onecard/internal/middleware"
	"github.com/mmynk/onecard/internal/service"
	"github.com/mmynk/onecard/internal/storage/sqlite"
	"github.com/mmynk/onecard/pkg/api/apiconnect"
	"github.com/mmynk/onecard/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	cfg, err := config.LoadOrEnv(getEnv("ONECARD_CONFIG", "onecard.yaml"))
	if err != nil {
		logging.Setup()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.Logging.Level))

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}
	if cfg.UsingDevSecret() {
		slog.Warn("JWT_SECRET not set, using the development secret")
	}

	cashback, err := cfg.Allocation.CashbackTable()
	if err != nil {
		slog.Error("Invalid cashback table", "error", err)
		os.Exit(1)
	}
	dealMarkup, err := cfg.Allocation.DealMarkupTable()
	if err != nil {
		slog.Error("Invalid deal markup table", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Storage.DatabasePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Storage.DatabasePath)

	logger := slog.Default()
	m := metrics.Default()
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	allocator := allocation.NewAllocator(store, m, logger)

	if cfg.Auth.AdminEmail != "" {
		admin, created, err := auth.EnsureAdmin(context.Background(), authenticator, store, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			slog.Error("Failed to seed admin account", "email", cfg.Auth.AdminEmail, "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("Admin account created", "user_id", admin.ID, "email", admin.Email)
		}
	}

	// Logging runs inside auth so it sees the caller.
	optionalAuth := connect.WithInterceptors(middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor())
	requireAuth := connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor())

	mux := http.NewServeMux()

	// Register Connect services
	mux.Handle(apiconnect.NewAuthServiceHandler(
		service.NewAuthService(authenticator, store, jwtManager, logger), optionalAuth))
	mux.Handle(apiconnect.NewAllocationServiceHandler(
		service.NewAllocationService(store, allocator, cashback, dealMarkup, logger), optionalAuth))
	mux.Handle(apiconnect.NewWalletServiceHandler(
		service.NewWalletService(store, logger), requireAuth))
	mux.Handle(apiconnect.NewDealServiceHandler(
		service.NewDealService(store, allocator, dealMarkup, logger), optionalAuth))

	mux.Handle("/metrics", promhttp.Handler())

	staticDir, err := filepath.Abs(cfg.Server.StaticPath)
	if err != nil {
		slog.Error("Failed to resolve static path", "error", err)
		os.Exit(1)
	}
	slog.Info("Serving static files", "path", staticDir)
	mux.HandleFunc("/", staticHandler(staticDir))

	// Add logging and CORS middleware
	loggedHandler := loggingMiddleware(corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           h2c.NewHandler(loggedHandler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", cfg.Server.Address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// staticHandler serves the storefront's static files. Unknown paths get
// index.html so client-side routes such as /customer/wallet load.
func staticHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Unmatched Connect paths must not fall through to the storefront.
		if strings.HasPrefix(r.URL.Path, "/onecard.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
