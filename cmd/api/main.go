package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imagegenhub/server/internal/api"
	"github.com/imagegenhub/server/internal/config"
	"github.com/imagegenhub/server/internal/logger"
	"github.com/imagegenhub/server/internal/repository"
	"github.com/imagegenhub/server/internal/service"
	"github.com/imagegenhub/server/internal/storage"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.File = cfg.Log.File
	logCfg.FileOnly = cfg.Log.FileOnly
	appLogger := logger.New(logCfg)
	logger.SetDefault(appLogger)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	userRepo := repository.NewUserRepository(db)
	memeRepo := repository.NewMemeRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	viewRepo := repository.NewViewRepository(db)

	objectStorage, err := storage.New(&storage.Config{
		Type:      storage.Type(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
		LocalDir:  cfg.Storage.LocalDir,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if err := objectStorage.EnsureBucket(context.Background()); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	authService := service.NewAuthService(userRepo, appLogger, &service.AuthConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	})
	viewService := service.NewViewService(viewRepo, memeRepo, appLogger)
	memeService := service.NewMemeService(memeRepo, voteRepo, commentRepo, viewService, appLogger)
	voteService := service.NewVoteService(db, memeRepo, appLogger)
	commentService := service.NewCommentService(commentRepo, memeRepo, userRepo, appLogger)
	uploadService := service.NewUploadService(objectStorage, cfg.Upload.MaxSizeBytes, appLogger)

	// Only the local backend needs the router to serve files itself.
	uploadsDir := ""
	if local, ok := objectStorage.(*storage.LocalStorage); ok {
		uploadsDir = local.Dir()
	}

	router := api.SetupRouter(&api.Services{
		Auth:     authService,
		Memes:    memeService,
		Votes:    voteService,
		Comments: commentService,
		Uploads:  uploadService,
	}, &cfg.Server, uploadsDir)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
