package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/service"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/session"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	logger := logging.New("storefront-service", cfg.Log.Level)
	defer func() { _ = logger.Sync() }()

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := session.NewRedisClient(cfg.Redis)
	defer redisClient.Close()
	sessionStore := session.NewRedisStore(redisClient, cfg.Session.TTL, logger.Named("sessions"))

	catalogRepo := repository.NewPostgresCatalogRepository(db, logger.Named("catalog"))
	orderRepo := repository.NewPostgresOrderRepository(db, logger.Named("orders"))
	profileRepo := repository.NewPostgresProfileRepository(db, logger.Named("profiles"))

	notificationClient := clients.NewHTTPNotificationClient(cfg.NotificationService, cfg.Mail, logger.Named("notifications"))

	var eventPublisher interface {
		service.OrderEventPublisher
		Close() error
	} = events.NopPublisher{}
	if cfg.Features.EnableOrderEvents {
		eventPublisher = events.NewKafkaPublisher(cfg.Kafka, logger.Named("events"))
	}
	defer eventPublisher.Close()

	cartService := service.NewCartService(catalogRepo, logger.Named("cart-service"))
	checkoutService := service.NewCheckoutService(
		catalogRepo,
		orderRepo,
		profileRepo,
		notificationClient,
		eventPublisher,
		cfg.Features,
		logger.Named("checkout-service"),
	)

	h := handlers.NewHandlers(
		catalogRepo,
		profileRepo,
		cartService,
		checkoutService,
		sessionStore,
		cfg.Session,
		map[string]handlers.ReadinessCheck{
			"postgres": db.PingContext,
			"redis":    sessionStore.Ping,
		},
		logger.Named("handlers"),
	)

	if cfg.Internal.APIKey == "" {
		logger.Warn("INTERNAL_API_KEY is not set, /internal routes will reject every request")
	}

	srv := server.New(h, cfg, logger)

	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("enable_order_events", cfg.Features.EnableOrderEvents),
		)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func initDatabase(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := repository.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("database migrations applied")
	}

	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)

	return db, nil
}
