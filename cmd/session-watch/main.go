// Command session-watch logs in to a OneCard server, keeps the
// credentials in a local SQLite store and tracks the session until it
// expires, sending the expiry notification when it does.
//
// Usage:
//
//	session-watch -server http://localhost:8080 -email me@example.com -password secret -to 27821234567
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/onecard/internal/config"
	"github.com/mmynk/onecard/internal/metrics"
	"github.com/mmynk/onecard/internal/models"
	"github.com/mmynk/onecard/internal/notify"
	"github.com/mmynk/onecard/internal/session"
	"github.com/mmynk/onecard/internal/storage/sqlite"
	"github.com/mmynk/onecard/pkg/api"
	"github.com/mmynk/onecard/pkg/api/apiconnect"
	"github.com/mmynk/onecard/pkg/logging"
)

func main() {
	var (
		configPath  = flag.String("config", "onecard.yaml", "config file; environment variables are used when it is missing")
		serverURL   = flag.String("server", "http://localhost:8080", "OneCard server URL")
		email       = flag.String("email", "", "log in with this email before watching; empty reuses stored credentials")
		password    = flag.String("password", os.Getenv("ONECARD_PASSWORD"), "password for -email")
		route       = flag.String("route", "/customer", "route the watcher pretends to be on")
		dbPath      = flag.String("db", "", "credential store (defaults to the configured database)")
		to          = flag.String("to", "", "expiry notification number (defaults to session.notify_destination)")
		metricsAddr = flag.String("metrics-addr", "", "serve /metrics on this address")
		exitOnExp   = flag.Bool("exit-on-expiry", true, "stop once the session has expired")
	)
	flag.Parse()

	cfg, err := config.LoadOrEnv(*configPath)
	if err != nil {
		logging.Setup()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.Logging.Level))
	logger := slog.Default().With("component", "session-watch")

	if *dbPath == "" {
		*dbPath = cfg.Storage.DatabasePath
	}
	if *to == "" {
		*to = cfg.Session.NotifyDestination
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("Failed to open credential store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	kv := store.KV("session")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *email != "" {
		if err := login(ctx, kv, *serverURL, *email, *password); err != nil {
			logger.Error("Login failed", "email", *email, "error", err)
			os.Exit(1)
		}
		logger.Info("Logged in", "email", *email)
	}

	m := metrics.Default()
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, logger)
	}

	manager := session.NewManager(kv,
		session.WithPolicy(cfg.SessionPolicy()),
		session.WithAuthenticatedRoutes(cfg.Session.AuthenticatedRoutes...),
		session.WithLogger(logger),
		session.WithMetrics(m),
	)

	manager.Subscribe(session.SubscriberFunc(func(_ context.Context, ev session.Event) {
		if ev.To == session.WarningWindow {
			logger.Warn("Session about to expire", "user", ev.State.UserName, "remaining", manager.Remaining().Round(time.Second))
		}
	}))
	if *to != "" {
		manager.Subscribe(&session.ExpiryNotifier{
			Dispatcher:  dispatcher(cfg, logger),
			Destination: *to,
			Timeout:     10 * time.Second,
			Logger:      logger,
			Metrics:     m,
		})
	} else {
		logger.Info("No notification number configured, expiry will only be logged")
	}
	manager.Subscribe(&session.LogoutHandler{
		KV:     kv,
		Logger: logger,
		Redirect: func(context.Context) {
			logger.Info("Session expired, redirecting to login", "route", "/login")
			if *exitOnExp {
				stop()
			}
		},
	})

	phase := manager.Navigate(ctx, *route)
	logger.Info("Watching session", "route", *route, "phase", phase, "remaining", manager.Remaining().Round(time.Second))
	if phase == session.NoSession {
		logger.Warn("No stored session; pass -email to log in")
	}

	manager.Start(ctx)
	logger.Info("Session watcher stopped", "phase", manager.Phase())
}

// login authenticates against the server and stores the credentials the
// way the storefront does.
func login(ctx context.Context, kv session.KV, serverURL, email, password string) error {
	client := apiconnect.NewAuthServiceClient(http.DefaultClient, serverURL)
	resp, err := client.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    email,
		Password: password,
	}))
	if err != nil {
		return err
	}

	u := resp.Msg.User
	return session.SaveLogin(ctx, kv, resp.Msg.Token, session.StoredUser{
		ID:    u.ID,
		Name:  u.DisplayName,
		Email: u.Email,
		Role:  models.Role(u.Role),
		Phone: u.Phone,
	}, time.Now())
}

// dispatcher always logs the WhatsApp link and also posts to the edge
// function when one is configured.
func dispatcher(cfg *config.Config, logger *slog.Logger) notify.Dispatcher {
	d := notify.Multi{&notify.LinkDispatcher{BaseURL: cfg.Notify.WhatsAppBase}}
	if cfg.Notify.Endpoint != "" {
		d = append(d, notify.NewHTTPDispatcher(cfg.NotifyHTTP(), logger))
	}
	return d
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
