package app

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

	"go-watchlist/internal/cache"
	"go-watchlist/internal/config"
	"go-watchlist/internal/database"
	"go-watchlist/internal/handler"
	"go-watchlist/internal/logger"
	"go-watchlist/internal/mailer"
	"go-watchlist/internal/middleware"
	"go-watchlist/internal/moviedb"
	"go-watchlist/internal/repository"
	"go-watchlist/internal/router"
	"go-watchlist/internal/service"
	"go-watchlist/internal/storage"
	"go-watchlist/internal/token"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(log)

	avatars, err := storage.New(cfg.AvatarRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize avatar storage: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &App{cleanupFuncs: []func(){db.Close}}

	if err := db.EnsureSchema(context.Background()); err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Pool)
	watchlistRepo := repository.NewWatchlistRepository(db.Pool)
	slog.Info("database ready")

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.JWTAccessTTL,
		RefreshTTL:    cfg.JWTRefreshTTL,
	})
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	var mail mailer.Mailer
	if cfg.MailEnabled() {
		smtp, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.EmailHost,
			Port:     cfg.EmailPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
			From:     cfg.EmailFrom,
		})
		if err != nil {
			a.cleanup()
			return nil, fmt.Errorf("failed to initialize mailer: %w", err)
		}
		mail = smtp
	} else {
		slog.Warn("EMAIL_HOST not set, reset emails will only be logged")
		mail = mailer.NewLogMailer(slog.Default())
	}

	var searchCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(context.Background(), cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			a.cleanup()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = redisClient.Close() })
		searchCache = cache.NewRedisCache(redisClient)
		slog.Info("search cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.SearchCacheTTL)
	}

	tmdb := moviedb.NewClient(moviedb.Config{
		APIKey:  cfg.TMDBAPIKey,
		BaseURL: cfg.TMDBBaseURL,
		Timeout: cfg.TMDBTimeout,
	}, nil)

	authService, err := service.NewAuthService(userRepo, issuer, cfg.BcryptCost)
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	passwordService := service.NewPasswordService(userRepo, mail, service.PasswordConfig{
		BcryptCost: cfg.BcryptCost,
		ResetTTL:   cfg.ResetTokenTTL,
		ClientURL:  cfg.ClientURL,
	})
	avatarService := service.NewAvatarService(userRepo, avatars, cfg.AvatarSize)
	movieService := service.NewMovieService(tmdb, searchCache, cfg.SearchCacheTTL)
	watchlistService := service.NewWatchlistService(watchlistRepo)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(issuer), router.Handlers{
		Auth:      handler.NewAuthHandler(authService, passwordService, avatarService, cfg.MaxAvatarSize),
		Movie:     handler.NewMovieHandler(movieService),
		Watchlist: handler.NewWatchlistHandler(watchlistService),
		Avatar:    handler.NewAvatarHandler(avatarService),
		Docs:      handler.NewDocsHandler(cfg.DocsPath),
		Health:    handler.NewHealthHandler(db),
	})

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("shutdown requested", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// In-flight requests finish before the pool and cache connections close.
	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
