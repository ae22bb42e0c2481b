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

	"github.com/mohdashiqtp/procurement-app/api/routes"
	"github.com/mohdashiqtp/procurement-app/internal/auth"
	"github.com/mohdashiqtp/procurement-app/internal/items"
	"github.com/mohdashiqtp/procurement-app/internal/purchaseorders"
	"github.com/mohdashiqtp/procurement-app/internal/suppliers"
	"github.com/mohdashiqtp/procurement-app/internal/users"
	"github.com/mohdashiqtp/procurement-app/pkg/auth/session"
	"github.com/mohdashiqtp/procurement-app/pkg/config"
	"github.com/mohdashiqtp/procurement-app/pkg/db"
	"github.com/mohdashiqtp/procurement-app/pkg/logger"
	"github.com/mohdashiqtp/procurement-app/pkg/metrics"
	"github.com/mohdashiqtp/procurement-app/pkg/migrate"
	"github.com/mohdashiqtp/procurement-app/pkg/redis"
	"github.com/mohdashiqtp/procurement-app/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	// money goes over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	store, err := local.New(cfg.Uploads)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(reg)
	orderMetrics := metrics.NewOrderMetrics(reg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	supplierRepo := suppliers.NewRepository(dbClient.DB())
	supplierService, err := suppliers.NewService(supplierRepo)
	if err != nil {
		return err
	}

	itemRepo := items.NewRepository(dbClient.DB())
	itemService, err := items.NewService(items.ServiceParams{
		Repo:         itemRepo,
		SupplierRepo: supplierRepo,
		TxRunner:     dbClient,
		Images:       store,
		Logger:       logg,
	})
	if err != nil {
		return err
	}

	orderService, err := purchaseorders.NewService(purchaseorders.ServiceParams{
		Orders:    purchaseorders.NewRepository(dbClient.DB()),
		Suppliers: supplierRepo,
		Items:     itemRepo,
		Metrics:   orderMetrics,
	})
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": dbClient.Dialect(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			sessionManager,
			authService,
			supplierService,
			itemService,
			orderService,
			routes.Observability{Gatherer: reg, HTTPMetrics: httpMetrics},
		),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
