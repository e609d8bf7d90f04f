package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/secret-notes/internal/config"
	"github.com/iliyamo/secret-notes/internal/database"
	"github.com/iliyamo/secret-notes/internal/handler"
	"github.com/iliyamo/secret-notes/internal/logger"
	"github.com/iliyamo/secret-notes/internal/middleware"
	"github.com/iliyamo/secret-notes/internal/oauth"
	"github.com/iliyamo/secret-notes/internal/queue"
	"github.com/iliyamo/secret-notes/internal/repository"
	"github.com/iliyamo/secret-notes/internal/router"
	"github.com/iliyamo/secret-notes/internal/service"
	"github.com/iliyamo/secret-notes/internal/session"
	"github.com/iliyamo/secret-notes/internal/utils"
	"github.com/iliyamo/secret-notes/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger.SetBase(zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		zl.Fatal("migrate database", zap.Error(err))
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		zl.Fatal("connect redis", zap.Error(err))
	}
	defer rdb.Close()

	users := repository.NewUserRepo(db)
	notes := repository.NewNoteRepo(db)
	sessions := session.NewManager(session.NewRedisStore(rdb, cfg.SessionTTL), users, cfg.SessionSecure)

	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		publisher = service.NewAMQPPublisher(cfg.RabbitURL)
		go func() {
			if err := queue.NewConsumer(cfg.RabbitURL, zl.Named("account-consumer")).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("account consumer stopped", zap.Error(err))
			}
		}()
	}
	accounts := service.NewAccounts(users, utils.NewHasher(cfg.BcryptCost), publisher, zl)

	var google oauth.Provider
	if cfg.GoogleEnabled() {
		google = oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	} else {
		zl.Info("google sign-in disabled: GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set")
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		zl.Fatal("parse templates", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(middleware.RequestLogger(zl))
	e.Use(echomw.Recover())
	router.RegisterRoutes(e, router.Deps{
		Pages:     &handler.PageHandler{GoogleEnabled: google != nil},
		Auth:      handler.NewAuthHandler(accounts, sessions, google, cfg.SessionSecret, cfg.SessionSecure),
		Notes:     handler.NewNotesHandler(notes),
		Sessions:  sessions,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		PageCache: config.LoadPageCacheConfig(),
	})

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
