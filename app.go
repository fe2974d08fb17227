package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"socialfeed/app/config"
	"socialfeed/app/logger"
	"socialfeed/app/repositories"
	"socialfeed/app/routes"
	"socialfeed/app/storage"
	"socialfeed/app/token"
)

const shutdownTimeout = 10 * time.Second

// newImageStore returns the image backend selected in cfg.
func newImageStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageMinio:
		return storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
	default:
		return storage.NewLocalStore(cfg.Storage.ImagesDir)
	}
}

// serve opens the database and image store and runs the API until ctx is
// cancelled.
func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := repositories.Open(cfg.Database.Path, log)
	if err != nil {
		return err
	}
	defer db.Close()

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up image storage: %w", err)
	}

	handler := routes.NewHandler(routes.Options{
		DB:             db,
		Images:         images,
		Tokens:         token.NewManager(cfg.JWT.Secret, cfg.JWT.TTL),
		PageSize:       cfg.Feed.PageSize,
		BcryptCost:     cfg.BcryptCost,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	log.Info("Starting socialfeed API",
		"addr", ln.Addr().String(),
		"storage", cfg.Storage.Backend,
		"db_path", cfg.Database.Path)
	return runServer(ctx, srv, ln, log)
}

// runServer serves on ln until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down socialfeed API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
