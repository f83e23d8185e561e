package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"healthfirst/config"
	_ "healthfirst/docs"
	"healthfirst/internal/metrics"
	"healthfirst/internal/notify"
	"healthfirst/internal/repository"
	"healthfirst/internal/service"
	"healthfirst/internal/storage"
	"healthfirst/internal/transport/rest"
	"healthfirst/internal/transport/websocket"
	"healthfirst/pkg/database"
	"healthfirst/pkg/logger"
)

// @title HealthFirst API
// @version 1.0
// @description Provider availability calendar: slots, recurring series, templates and notifications

// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Name, cfg.Environment, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	log.Info("running database migrations")
	if err := database.RunMigrations(ctx, db, "./migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("migrations applied")

	var feed notify.Feed
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
		}
		feed = notify.NewRedisFeed(client, cfg.Redis.FeedSize)
		log.Info("notification feed backed by redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		log.Warn("redis is not configured, notifications are kept in process memory")
		feed = notify.NewMemoryFeed(cfg.Redis.FeedSize)
	}

	var fileStorage storage.FileStorage
	if cfg.S3.Endpoint != "" {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			log.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
		fileStorage = s3Storage
		log.Info("S3 storage initialized", zap.String("endpoint", cfg.S3.Endpoint))
	} else {
		log.Warn("S3 storage is not configured, schedule export is disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	availabilityMetrics := metrics.NewAvailabilityMetrics(registry)

	hub := websocket.NewNotificationHub(log)
	go hub.Run(ctx)

	services, err := service.NewServices(service.Deps{
		Repos:       repository.NewRepositories(db),
		Logger:      log,
		Config:      cfg,
		FileStorage: fileStorage,
		Notifier:    notify.NewDispatcher(feed, log, hub),
		Metrics:     availabilityMetrics,
	})
	if err != nil {
		log.Fatal("failed to initialize services", zap.Error(err))
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	rest.NewHandler(services, log, cfg, hub, registry).InitRoutes(router)

	srv := &http.Server{
		Addr:           ":" + cfg.HTTP.Port,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderMB << 20,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	log.Info("server started",
		zap.String("addr", srv.Addr),
		zap.String("storage", cfg.Availability.Storage),
	)

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("server stopped")
}
