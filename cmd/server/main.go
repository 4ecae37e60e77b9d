package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"vidshare/cmd/config"
	"vidshare/pkg/auth"
	"vidshare/pkg/database"
	"vidshare/pkg/handlers"
	"vidshare/pkg/media"
	"vidshare/pkg/services"
	"vidshare/pkg/storage"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	if cfg.Server.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoDB, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoDB.Close(closeCtx); err != nil {
			slog.Warn("failed to close mongo client", "error", err)
		}
	}()
	if err := database.EnsureIndexes(ctx, mongoDB.DB); err != nil {
		return err
	}

	journal, err := database.OpenJournal(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer journal.Close()

	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	mediaClient := media.NewClient(store, media.FFmpeg{
		FFmpegPath:  cfg.FFmpeg.FFmpegPath,
		FFprobePath: cfg.FFmpeg.FFprobePath,
	}, cfg.FFmpeg.TempDir)

	users := database.NewUserRepository(mongoDB.DB)
	channels := database.NewChannelRepository(mongoDB.DB)
	videos := database.NewVideoRepository(mongoDB.DB)
	comments := database.NewCommentRepository(mongoDB.DB)
	issuer := auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)

	router := handlers.NewRouter(handlers.Services{
		Users:    services.NewUserService(users, channels, issuer),
		Channels: services.NewChannelService(channels, users, mediaClient, journal),
		Videos:   services.NewVideoService(videos, channels, mediaClient, journal),
		Comments: services.NewCommentService(comments, users, channels),
	}, handlers.RouterConfig{
		ClientURL: cfg.Server.ClientURL,
		Cookie:    handlers.CookieConfig{TTL: cfg.JWT.TTL, Production: cfg.Server.Production},
	})
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newStore(ctx context.Context, cfg config.StorageConfig) (media.ObjectStore, error) {
	switch cfg.Driver {
	case "s3":
		return storage.NewS3Store(storage.S3Config{
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			PublicURL: cfg.PublicURL,
		})
	case "minio":
		return storage.NewMinIOStore(ctx, storage.MinIOConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
			PublicURL: cfg.PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
