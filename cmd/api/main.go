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

	"tourmate-backend/internal/blacklist"
	"tourmate-backend/internal/config"
	"tourmate-backend/internal/handlers"
	"tourmate-backend/internal/middleware"
	"tourmate-backend/internal/routes"
	"tourmate-backend/internal/services"
	"tourmate-backend/internal/storage"
	"tourmate-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func main() {
	// 1. Load env
	cfg := config.Load()

	logger := utils.NewLogger(cfg.Log, "tourmate-backend")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect DB
	db, err := config.ConnectDB(cfg)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}

	// 3. Blob store and token blacklist
	store, err := newStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}
	revoked, err := newBlacklist(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatal("blacklist", zap.Error(err))
	}

	// 4. Services and handlers
	maxUpload := cfg.MaxUploadMB << 20
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	h := &handlers.Handler{
		Auth:    services.NewAuthService(db, tokens, revoked, logger),
		Profile: services.NewProfileService(db, store, maxUpload, logger),
		Diary:   services.NewDiaryService(db, store, maxUpload, logger),
		Alerts:  services.NewAlertService(db, logger),
		Admin:   services.NewAdminService(db),
		Storage: store,
		Logger:  logger,
	}

	// 5. Router
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = maxUpload

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	go limiter.Run(time.Minute, 3*time.Minute, ctx.Done())

	opts := routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		RateLimiter: limiter,
	}
	if cfg.StorageDriver == "local" {
		opts.MediaRoot = cfg.MediaRoot
		opts.MediaURL = cfg.MediaURL
	}
	routes.SetupRoutes(r, h, opts)

	// 6. Run server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case "minio":
		return storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:   cfg.Minio.Endpoint,
			AccessKey:  cfg.Minio.AccessKey,
			SecretKey:  cfg.Minio.SecretKey,
			Bucket:     cfg.Minio.Bucket,
			UseSSL:     cfg.Minio.UseSSL,
			PublicBase: cfg.Minio.PublicBase,
		})
	case "firebase":
		return storage.NewFirebaseStorage(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.Bucket)
	default:
		return storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL), nil
	}
}

// newBlacklist prefers Redis when configured so revocations expire on their own.
func newBlacklist(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger) (blacklist.Blacklist, error) {
	if cfg.Redis.Addr == "" {
		return blacklist.NewGormBlacklist(db), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	logger.Info("token blacklist in redis", zap.String("addr", cfg.Redis.Addr))
	return blacklist.NewRedisBlacklist(client), nil
}
