package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/itsrogermachado/novaeramtds-sub001/api/routes"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/auth"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/backup"
	checkoutsvc "github.com/itsrogermachado/novaeramtds-sub001/internal/checkout"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/coupons"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/finance"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/orders"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/payments"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/products"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/users"
	pixwebhook "github.com/itsrogermachado/novaeramtds-sub001/internal/webhooks/pix"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/auth/session"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/config"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/metrics"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/migrate"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/outbox"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/outbox/idempotency"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/pix"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/redis"
)

const webhookGuardTTL = 48 * time.Hour

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	pixOpts := []pix.Option{pix.WithTimeout(cfg.Pix.RequestTimeout)}
	if cfg.Pix.BaseURL != "" {
		pixOpts = append(pixOpts, pix.WithBaseURL(cfg.Pix.BaseURL))
	}
	pixClient, err := pix.NewClient(cfg.Pix.APIKey, cfg.Pix.Environment(), pixOpts...)
	if err != nil {
		logg.Error(context.Background(), "failed to create pix client", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	couponsRepo := coupons.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	financeRepo := finance.NewRepository(dbClient.DB())
	backupRepo := backup.NewRepository(dbClient.DB())
	outboxEmitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	inventory, err := products.NewInventory(productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}
	authService, err := auth.NewService(usersRepo, sessionManager, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	backupService, err := backup.NewService(backupRepo, "api", logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create backup service", err)
		os.Exit(1)
	}
	financeService, err := finance.NewService(financeRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create finance service", err)
		os.Exit(1)
	}
	productsService, err := products.NewService(productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}
	couponsService, err := coupons.NewService(couponsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupons service", err)
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
	checkoutService, err := checkoutsvc.NewService(
		productsRepo,
		couponsRepo,
		couponsService,
		ordersRepo,
		inventory,
		dbClient,
		outboxEmitter,
		pixClient,
		ordersService,
		cfg.Pix,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	paymentsService, err := payments.NewService(ordersRepo, pixClient, ordersService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}
	webhookGuard, err := idempotency.NewManager(redisClient, webhookGuardTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}
	webhookService, err := pixwebhook.NewService(cfg.Pix, ordersService, webhookGuard, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

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
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			HTTPMetrics: httpMetrics,
			Auth:        authService,
			Users:       usersService,
			Backup:      backupService,
			Finance:     financeService,
			Products:    productsService,
			Coupons:     couponsService,
			Checkout:    checkoutService,
			Orders:      ordersService,
			Payments:    paymentsService,
			Webhook:     webhookService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		graceCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "error shutting down http server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
