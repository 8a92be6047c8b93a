package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaekwang-park/todo-app/internal/cache"
	cognitopkg "github.com/jaekwang-park/todo-app/internal/cognito"
	"github.com/jaekwang-park/todo-app/internal/config"
	todohttp "github.com/jaekwang-park/todo-app/internal/http"
	"github.com/jaekwang-park/todo-app/internal/notify"
	"github.com/jaekwang-park/todo-app/internal/repository"
	"github.com/jaekwang-park/todo-app/internal/service"
	"github.com/jaekwang-park/todo-app/internal/session"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"auth_dev_mode", cfg.AuthDevMode,
		"log_level", cfg.LogLevel,
		"remote_timeout", cfg.RemoteTimeout,
		"refetch_timeout", cfg.RefetchTimeout,
	)

	// Database connection
	db, err := repository.NewDB(cfg.DB.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected")

	// Repositories
	todoRepo := repository.NewPostgresTodo(db)
	userRepo := repository.NewPostgresUser(db)

	// Session state
	sessions := session.NewProvider()
	notes := notify.NewQueue()
	todoCache := cache.New(service.NewTodoFetcher(todoRepo), logger, cfg.RefetchTimeoutDuration())

	sessions.OnChange(func(prev, next *session.Identity) {
		// The cache key carries the owner, so a new identity never reads the
		// previous user's list. Drop what the queue still shows about it.
		notes.Dismiss("")
		if next != nil {
			logger.Info("identity changed", "user_id", next.UserID)
		} else {
			logger.Info("identity cleared")
		}
	})

	// Services
	todoSvc := service.NewTodoService(todoRepo, todoCache, sessions, notes, logger,
		service.WithRemoteTimeout(cfg.RemoteTimeoutDuration()),
	)

	// Cognito client + token verifier
	var (
		cognitoClient cognitopkg.Client
		verifier      service.TokenVerifier
	)
	if cfg.Cognito.AppClientID != "" {
		awsClient, err := cognitopkg.NewAWSClient(
			ctx,
			cfg.Cognito.Region,
			cfg.Cognito.AppClientID,
			cfg.Cognito.AppClientSecret,
		)
		if err != nil {
			return err
		}
		cognitoClient = awsClient
		logger.Info("cognito client initialized", "region", cfg.Cognito.Region)
	} else {
		logger.Warn("cognito client not initialized: COGNITO_APP_CLIENT_ID not set")
	}
	if cfg.Cognito.UserPoolID != "" && cfg.Cognito.AppClientID != "" {
		keys := session.NewKeySet(session.CognitoJWKSURL(cfg.Cognito.Region, cfg.Cognito.UserPoolID))
		verifier = session.NewVerifier(keys, session.CognitoIssuer(cfg.Cognito.Region, cfg.Cognito.UserPoolID), cfg.Cognito.AppClientID)
	}

	authSvc := service.NewAuthService(cognitoClient, verifier, userRepo, sessions, logger, cfg.AuthDevMode)

	if cfg.AuthDevUserID != "" {
		if _, err := authSvc.DevLogin(ctx, cfg.AuthDevUserID); err != nil {
			return err
		}
	}

	// HTTP Server
	srv := todohttp.NewServer(cfg.ServerPort, logger, todohttp.Deps{
		DB:       db,
		Todos:    todoSvc,
		Auth:     authSvc,
		Notes:    notes,
		Sessions: sessions,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	logger.Info("server starting", "port", cfg.ServerPort)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Let background refetches finish before the database closes.
	todoCache.Wait()

	logger.Info("server stopped gracefully")
	return nil
}
