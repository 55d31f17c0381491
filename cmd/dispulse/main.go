package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dispulse/sitecontent/internal/adapter/driven/security"
	sqliteadapter "github.com/dispulse/sitecontent/internal/adapter/driven/sqlite"
	httphandler "github.com/dispulse/sitecontent/internal/adapter/driving/http"
	webhandler "github.com/dispulse/sitecontent/internal/adapter/driving/web"
	"github.com/dispulse/sitecontent/internal/application"
	"github.com/dispulse/sitecontent/internal/config"
	"github.com/dispulse/sitecontent/internal/metrics"
	"github.com/dispulse/sitecontent/internal/ratelimit"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"dist_dir", cfg.DistDir,
		"canonical_host", cfg.CanonicalHost,
		"seed_users", len(cfg.SeedUsers),
	)
	if cfg.UsingDefaultSecret() {
		slog.Warn("JWT_SECRET not set, using insecure development secret")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", db.Path())

	// 4. Run migrations on writer connection.
	version, err := sqliteadapter.RunMigrations(db.Writer.DB)
	if err != nil {
		return err
	}
	slog.Info("migrations complete", "schema_version", version)

	// 5. Wire adapters.
	userStore := sqliteadapter.NewUserRepo(db)
	contentStore := sqliteadapter.NewContentRepo(db)
	hasher := security.NewBcryptHasher(security.DefaultBcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret)

	// 6. Seed operator accounts from OWNER_USERS.
	if _, err := application.NewUserSeeder(userStore, hasher, slog.Default()).Seed(ctx, cfg.SeedUsers); err != nil {
		return err
	}

	// 7. Create services.
	authSvc := application.NewAuthService(userStore, hasher, signer, cfg.TokenTTL)
	contentSvc := application.NewContentService(contentStore)
	serverMetrics := metrics.New()

	loginLimiter := ratelimit.New(ctx,
		ratelimit.WithRate(cfg.LoginRatePerSec, cfg.LoginBurst),
		ratelimit.WithOnFirstDenied(func(ip string) {
			slog.Warn("login rate limit reached", "ip", ip)
		}),
	)

	// 8. Create HTTP handler and router.
	apiHandler := httphandler.NewHandler(authSvc, contentSvc, serverMetrics, slog.Default())
	handler := httphandler.NewRouter(apiHandler, httphandler.RouterOptions{
		CanonicalHost: cfg.CanonicalHost,
		LoginLimiter:  loginLimiter,
		Static:        webhandler.NewHandler(cfg.DistDir, slog.Default()),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
