package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"harrys-team/backend/internal/apigateway"
	"harrys-team/backend/internal/auth"
	"harrys-team/backend/internal/config"
	"harrys-team/backend/internal/contentmanagement"
	"harrys-team/backend/internal/datastore"
	"harrys-team/backend/internal/edgefilter"
	"harrys-team/backend/internal/logging"
	"harrys-team/backend/internal/marketing"
	"harrys-team/backend/internal/notify"
	"harrys-team/backend/internal/objectstore"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg config.AppConfig, logger *zap.Logger) error {
	ctx := context.Background()

	codec, err := auth.NewTokenCodec(cfg.JWTSecret)
	if err != nil {
		return err
	}

	store, err := datastore.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}
	if err := auth.SeedAdmin(ctx, store, logger, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	deps := apigateway.Deps{
		Logger:     logger,
		Guard:      auth.NewGuard(codec),
		AdminUIDir: cfg.AdminUIDir,
		Health:     store.Ping,
		Origin: edgefilter.OriginPolicy{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Strict:         cfg.StrictOriginCheck,
			SessionCookie:  auth.CookieName,
		},
	}

	var uploader objectstore.Uploader
	switch cfg.UploadBackend {
	case "minio":
		minioStore, err := objectstore.NewMinioStore(ctx, cfg.Minio, logger)
		if err != nil {
			return err
		}
		uploader = minioStore
		if cfg.Minio.PublicURL == "" {
			deps.Objects = minioStore
		}
		logger.Info("uploads stored in MinIO", zap.String("bucket", cfg.Minio.BucketName))
	default:
		uploader = objectstore.NewLocalStore(cfg.UploadDir, logger)
		deps.UploadDir = cfg.UploadDir
		logger.Info("uploads stored on local disk", zap.String("dir", cfg.UploadDir))
	}

	switch cfg.RateLimit.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The limiter fails open, so a missing Redis is not fatal.
			logger.Warn("redis unreachable, rate limiting will fail open", zap.Error(err))
		}
		deps.Limiter = edgefilter.NewRedisLimiter(rdb, "ratelimit", cfg.RateLimit.Window, cfg.RateLimit.Max)
	default:
		deps.Limiter = edgefilter.NewMemoryLimiter(cfg.RateLimit.Window, cfg.RateLimit.Max, cfg.RateLimit.MaxKeys)
	}

	var notifier notify.ContactNotifier = notify.NopNotifier{}
	if len(cfg.Kafka.Brokers) > 0 {
		notifier = notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.ContactTopic, logger)
	}
	defer notifier.Close()

	deps.Auth = auth.NewHandler(store, codec, logger, cfg.ExposeInternalErrors)
	deps.Auth.SetSecureCookies(cfg.SecureCookies)
	deps.Content = contentmanagement.NewHandler(store, uploader, logger, cfg.ExposeInternalErrors)
	deps.Marketing = marketing.NewHandler(store, notifier, logger, cfg.ExposeInternalErrors)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := apigateway.SetupRouter(deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           apigateway.WithCORS(router, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
