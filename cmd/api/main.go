package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kuechenzettel/backend/config"
	"github.com/kuechenzettel/backend/internal/api"
	"github.com/kuechenzettel/backend/internal/database"
	"github.com/kuechenzettel/backend/internal/logger"
	"github.com/kuechenzettel/backend/internal/router"
	"github.com/kuechenzettel/backend/internal/server"
	"github.com/kuechenzettel/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewLogger(string(config.GetEnvironment()), cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	db, err := database.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.SeedDefaultCategories(db); err != nil {
		appLogger.Fatal("failed to seed default categories", zap.Error(err))
	}

	var cache *redis.Client
	if cfg.RedisEnabled() {
		cache, err = database.NewRedisClient(cfg, appLogger)
		if err != nil {
			// The cache is an optimization; the app works without it.
			appLogger.Warn("redis unavailable, shopping-list cache disabled", zap.Error(err))
			cache = nil
		}
	}

	images, err := newImageStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize image store", zap.Error(err))
	}

	recipeService := service.NewRecipeService(db, cache, appLogger)
	categoryService := service.NewCategoryService(db)
	shoppingListService := service.NewShoppingListService(recipeService, cache, appLogger)

	recipeHandler := api.NewRecipeHandler(recipeService, images, appLogger)
	categoryHandler := api.NewCategoryHandler(categoryService)
	shoppingListHandler := api.NewShoppingListHandler(shoppingListService, appLogger)

	engine := router.SetupRouter(recipeHandler, categoryHandler, shoppingListHandler, db, cache, appLogger)
	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort, appLogger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			appLogger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		appLogger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("server shutdown error", zap.Error(err))
	}
	appLogger.Info("server stopped")
}

func newImageStore(cfg *config.Config, log *zap.Logger) (service.ImageStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		s3Cfg, err := config.NewS3Config(context.Background(), cfg.S3Bucket)
		if err != nil {
			return nil, err
		}
		log.Info("using s3 image store", zap.String("bucket", cfg.S3Bucket))
		return service.NewS3ImageStore(s3Cfg), nil
	default:
		log.Info("using local image store", zap.String("dir", cfg.UploadDir))
		return service.NewLocalImageStore(cfg.UploadDir)
	}
}
