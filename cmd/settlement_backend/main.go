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

	"github.com/SscSPs/debt_settlement_app/internal/adapters/database/pgsql"
	"github.com/SscSPs/debt_settlement_app/internal/adapters/database/sqlite"
	"github.com/SscSPs/debt_settlement_app/internal/adapters/ratefile"
	"github.com/SscSPs/debt_settlement_app/internal/adapters/ratesupply"
	portsrepo "github.com/SscSPs/debt_settlement_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/debt_settlement_app/internal/core/ports/services"
	"github.com/SscSPs/debt_settlement_app/internal/core/services"
	"github.com/SscSPs/debt_settlement_app/internal/handlers"
	"github.com/SscSPs/debt_settlement_app/internal/middleware"
	"github.com/SscSPs/debt_settlement_app/internal/platform/config"
	"github.com/SscSPs/debt_settlement_app/internal/worker"
	"github.com/SscSPs/debt_settlement_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.3 init -d ../../ -g cmd/settlement_backend/main.go -o ../../cmd/docs

// @title Debt Settlement API
// @version 1.0
// @description Settles shared expenses across currencies with the smallest set of payments and serves the exchange rate cache behind it.

// @host localhost:8080
// @BasePath /
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize rate repository", slog.String("error", err.Error()), slog.String("backend", cfg.RateBackend))
		os.Exit(1)
	}
	defer closeRepos()

	var supplier portssvc.RateSupplier
	if cfg.RateProviderURL != "" {
		httpSupplier, err := ratesupply.NewHTTPRateSupplier(cfg.RateProviderURL, nil)
		if err != nil {
			logger.Error("Failed to initialize rate provider", slog.String("error", err.Error()))
			os.Exit(1)
		}
		supplier = httpSupplier
	} else {
		logger.Info("RATE_PROVIDER_URL not set, periodic rate refresh disabled")
	}

	store := services.NewExchangeRateStore(cfg.RateProviderBase)
	container := services.NewContainer(repos, store, supplier, cfg.RateProviderBase)

	loaded, err := container.ExchangeRate.LoadRates(ctx)
	if err != nil {
		logger.Error("Failed to load cached exchange rates", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Exchange rate cache loaded", slog.Int("rates", loaded))

	var refresher *worker.RateRefreshWorker
	if supplier != nil {
		refresher, err = worker.NewRateRefreshWorker(container.ExchangeRate, cfg.RateRefreshInterval, logger)
		if err != nil {
			logger.Error("Failed to create rate refresh worker", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter, err := middleware.NewMemoryLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Failed to create rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimit(limiter),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if refresher != nil {
		g.Go(func() error {
			refresher.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		closeRepos()
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// setupRepositories builds the configured rate backend. The SQL backends are migrated first.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*portsrepo.RepositoryProvider, func(), error) {
	switch cfg.RateBackend {
	case config.RateBackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQLite rate store", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db), func() { _ = db.Close() }, nil

	case config.RateBackendPostgres:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Database connection pool established.")

		logger.Info("Running database migrations...")
		applied, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
		if err != nil {
			dbPool.Close()
			return nil, nil, err
		}
		if applied {
			logger.Info("Database migrations applied successfully.")
		} else {
			logger.Info("No new migrations to apply.")
		}
		return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil

	default:
		logger.Info("Using file rate cache", slog.String("dir", cfg.RateCacheDir))
		return ratefile.NewRepositoryProvider(afero.NewOsFs(), cfg.RateCacheDir), func() {}, nil
	}
}
