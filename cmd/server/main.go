package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/httpapi"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/store"
)

func main() {
	logger := newSlogLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger auth.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(ctx, db); err != nil {
		return err
	}

	users := store.NewUsersRepository(db)
	credentials := store.NewCredentialStore(users)

	tokens := auth.NewTokenService(cfg).WithLogger(logger)
	sessions := auth.NewAuther(credentials, tokens).WithLogger(logger)

	cookies := httpapi.CookieConfig{
		Domain:     cfg.CookieDomain,
		Secure:     cfg.CookieSecure,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}

	opts := []httpapi.ControllerOption{httpapi.WithLogger(logger)}
	if cfg.S3AccessKey != "" {
		storage, err := media.NewS3Storage(ctx, media.Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			PublicURL:    cfg.S3PublicURL,
		})
		if err != nil {
			return err
		}
		opts = append(opts, httpapi.WithStorage(storage))
	} else {
		logger.Warn("media storage not configured, asset routes will fail")
	}

	app := httpapi.NewApp(httpapi.ServerDeps{
		Tokens:     tokens,
		Principals: credentials,
		Cookies:    cookies,
		Logger:     logger,
		Controller: httpapi.NewController(sessions, users, cookies, opts...),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.Shutdown()
	case err := <-errCh:
		return err
	}
}

// slogLogger adapts log/slog to the auth.Logger interface.
type slogLogger struct {
	s *slog.Logger
}

func newSlogLogger() *slogLogger {
	return &slogLogger{s: slog.New(slog.NewJSONHandler(os.Stdout, nil))}
}

func (l *slogLogger) Debug(msg string, args ...any) { l.s.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.s.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.s.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.s.Error(msg, args...) }
