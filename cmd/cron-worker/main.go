package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/itsrogermachado/novaeramtds-sub001/internal/cron"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/orders"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/payments"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/products"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/config"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/metrics"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/migrate"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/outbox"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/pix"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	pixOpts := []pix.Option{pix.WithTimeout(cfg.Pix.RequestTimeout)}
	if cfg.Pix.BaseURL != "" {
		pixOpts = append(pixOpts, pix.WithBaseURL(cfg.Pix.BaseURL))
	}
	pixClient, err := pix.NewClient(cfg.Pix.APIKey, cfg.Pix.Environment(), pixOpts...)
	if err != nil {
		logg.Error(context.Background(), "failed to create pix client", err)
		os.Exit(1)
	}

	productsRepo := products.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxEmitter := outbox.NewService(outboxRepo, logg)

	inventory, err := products.NewInventory(productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		ordersRepo,
		dbClient,
		outboxEmitter,
		inventory,
		productsRepo,
		redisClient,
		cfg.Delivery,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(ordersRepo, pixClient, ordersService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	orderTTLJob, err := cron.NewOrderTTLJob(cron.OrderTTLJobParams{
		Logger:        logg,
		PendingReader: ordersRepo,
		Orders:        ordersService,
		PendingTTL:    cfg.Checkout.PendingOrderTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order ttl job", err)
		os.Exit(1)
	}

	pixReconcileJob, err := cron.NewPixReconcileJob(cron.PixReconcileJobParams{
		Logger:   logg,
		Reader:   ordersRepo,
		Payments: paymentsService,
		MinAge:   cfg.Cron.ReconcileMinAge,
		Batch:    cfg.Cron.ReconcileBatch,
		Timeout:  cfg.Cron.ReconcileTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pix reconcile job", err)
		os.Exit(1)
	}

	outboxRetentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outboxRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(orderTTLJob, pixReconcileJob, outboxRetentionJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
