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

	"github.com/campusbite/campusbite-backend/api/controllers"
	"github.com/campusbite/campusbite-backend/api/routes"
	"github.com/campusbite/campusbite-backend/internal/cart"
	"github.com/campusbite/campusbite-backend/internal/customers"
	"github.com/campusbite/campusbite-backend/internal/orders"
	"github.com/campusbite/campusbite-backend/internal/vendors"
	"github.com/campusbite/campusbite-backend/pkg/config"
	"github.com/campusbite/campusbite-backend/pkg/db"
	"github.com/campusbite/campusbite-backend/pkg/logger"
	"github.com/campusbite/campusbite-backend/pkg/metrics"
	"github.com/campusbite/campusbite-backend/pkg/migrate"
	"github.com/campusbite/campusbite-backend/pkg/redis"
	"github.com/campusbite/campusbite-backend/pkg/storage/gcs"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pingers := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	var uploader gcs.Uploader
	if cfg.GCS.BucketName != "" {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		uploader = gcsClient
		pingers["gcs"] = gcsClient
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, media uploads disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	persister, err := cart.NewRedisPersister(redisClient, cfg.Cart.SnapshotTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart persister", err)
		os.Exit(1)
	}
	cartStore, err := cart.NewStore(persister, logg, cfg.Cart.WriteTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart store", err)
		os.Exit(1)
	}

	numberAllocator, err := orders.NewNumberAllocator(redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build order number allocator", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	vendorsRepo := vendors.NewRepository(dbClient.DB())
	customersRepo := customers.NewRepository(dbClient.DB())

	orderService, err := orders.NewService(ordersRepo, dbClient, vendorsRepo, numberAllocator, orderMetrics, logg, cfg.Orders.CallTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to build order service", err)
		os.Exit(1)
	}
	orderQueries, err := orders.NewQueryService(ordersRepo, vendorsRepo, customersRepo, logg, cfg.Orders.CallTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to build order query service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			CartStore:    cartStore,
			OrderService: orderService,
			OrderQueries: orderQueries,
			Uploader:     uploader,
			Registry:     registry,
			Pingers:      pingers,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
		// let in-flight cart snapshot writes settle
		cartStore.Wait()
	}
}
