package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Tunelist/cache"
	"Tunelist/config"
	"Tunelist/core/auth"
	"Tunelist/db"
	"Tunelist/logger"
	"Tunelist/repository"
	"Tunelist/storage"
)

// devJWTSecret signs tokens in development when JWT_SECRET is unset.
const devJWTSecret = "tunelist-development-secret"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Start connects the backing services, serves HTTP and blocks until SIGINT or SIGTERM.
func Start(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Connect to the database
	gdb, err := db.ConnectGormDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close(gdb)
	logger.Info("数据库连接成功", logger.String("host", cfg.DBHost), logger.String("database", cfg.DBName))

	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}

	trackRepo := repository.NewGormTrackRepository(gdb)
	playlistRepo := repository.NewGormPlaylistRepository(gdb)
	userRepo := repository.NewGormUserRepository(gdb)

	// Redis is optional: it backs the track cache and logout revocation.
	var revoker auth.Revoker
	if cfg.RedisEnabled() {
		client, err := db.ConnectRedis(cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		logger.Info("Redis连接成功", logger.String("host", cfg.RedisHost))

		trackRepo = cache.NewCachedTrackRepository(trackRepo, cache.NewTrackCache(client, cfg.TrackCacheTTL))
		revoker = cache.NewTokenDenylist(client)
	} else {
		logger.Warn("未配置 Redis, track cache and logout revocation are disabled")
	}

	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("JWT_SECRET 未设置, using the development signing key")
		secret = devJWTSecret
	}
	identity := auth.NewService(userRepo, auth.NewTokenIssuer(secret, cfg.JWTTTL), revoker)

	var covers CoverStore
	if cfg.MinioEnabled() {
		client, err := storage.NewMinioClient(cfg)
		if err != nil {
			return err
		}
		store := storage.NewCoverStore(client, cfg.MinioBucket)
		if err := store.EnsureBucket(context.Background()); err != nil {
			return err
		}
		covers = store
	} else {
		logger.Warn("未配置 MinIO, cover upload is disabled")
	}

	apiHandler := NewAPIHandler(cfg, trackRepo, playlistRepo, identity, covers)

	// 设置服务器超时
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(apiHandler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, srv)
}

// run serves until ctx is cancelled, then shuts the server down gracefully.
func run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务器启动", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 优雅关闭服务器
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("服务器已停止")
	return nil
}
