package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/blog-backend/internal/config"
	"github.com/iliyamo/blog-backend/internal/database"
	"github.com/iliyamo/blog-backend/internal/handler"
	"github.com/iliyamo/blog-backend/internal/logging"
	"github.com/iliyamo/blog-backend/internal/middleware"
	"github.com/iliyamo/blog-backend/internal/queue"
	"github.com/iliyamo/blog-backend/internal/repository"
	"github.com/iliyamo/blog-backend/internal/router"
	"github.com/iliyamo/blog-backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	users := repository.NewUserRepo(db)
	posts := repository.NewPostRepo(db)
	tokens := service.NewTokenService(service.TokenConfig{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}, users)

	// Redis is optional; without it the cache middleware passes through.
	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable, response cache disabled", "addr", cfg.Redis.Address())
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewRedisCache(cfg.Cache, rdb)

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.Events.Enabled {
		events = queue.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Queue)
		consumer := &queue.Consumer{
			URL:     cfg.Events.URL,
			Queue:   cfg.Events.Queue,
			LogPath: cfg.Events.LogPath,
			Log:     log,
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("post events consumer stopped", "err", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("1M"))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(users, tokens, cfg.BcryptCost), tokens)
	router.RegisterPosts(e, handler.NewPostHandler(posts, events), tokens, cache)
	router.RegisterAdmin(e, handler.NewAdminHandler(users), tokens)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
