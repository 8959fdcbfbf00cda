package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "board/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"board/internal/auth"
	"board/internal/cache"
	"board/internal/config"
	"board/internal/db"
	"board/internal/delivery"
	"board/internal/handler"
	"board/internal/logger"
	"board/internal/ratelimit"
	"board/internal/repository"
	"board/internal/router"
	"board/internal/service"
	"board/internal/view"
	"board/internal/worker"
)

// @title Board API
// @version 1.0
// @description Anonymous message board with email code sign-in.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		zl.Fatal("database init", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		zl.Fatal("database migrate", zap.Error(err))
	}

	redisClient := cache.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = redisClient.Close() }()
	cacheClient := cache.New(redisClient)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	codeRepo := repository.NewCodeRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	// Initialize code delivery
	httpClient := delivery.NewHTTPClient(cfg.DeliveryTimeout)
	providers := []delivery.Provider{
		delivery.NewWebhookProvider(httpClient),
		delivery.NewMailboxProvider(delivery.NewTokenStore(cache.NewRedisKV(redisClient)), httpClient, zl.Named("outlook")),
	}
	issuer := delivery.NewIssuer(cfg.Delivery(), zl.Named("delivery"), providers...)

	// Initialize services
	userService := service.NewUserService(userRepo, cacheClient, zl.Named("users"))
	authService := service.NewAuthService(userRepo, codeRepo, issuer, cfg.CodeTTL, zl.Named("auth"))
	postService := service.NewPostService(postRepo, zl.Named("posts"))

	sessions := auth.NewManager(auth.NewSessionService(cfg.AuthSecret), userService, cfg.CookieSecure, zl.Named("session"))

	limiter, err := ratelimit.NewFixedWindowLimiter(redisClient, "board:login", cfg.LoginRateLimit, cfg.LoginRateWindow)
	if err != nil {
		zl.Fatal("rate limiter init", zap.Error(err))
	}

	renderer, err := view.New()
	if err != nil {
		zl.Fatal("templates", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Config:       cfg,
		Log:          zl,
		Sessions:     sessions,
		LoginLimiter: limiter,
		Providers:    issuer.Providers(),
		Renderer:     renderer,
		Auth:         handler.NewAuthHandler(authService, sessions, cfg.CookieSecure),
		Posts:        handler.NewPostHandler(postService),
		Users:        handler.NewUserHandler(userService, cfg.CookieSecure),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeperDone := worker.NewSweeper(codeRepo, cfg.SweepInterval, zl.Named("sweeper")).Start(ctx)

	zl.Info("swagger documentation available", zap.String("url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort)))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}
	<-sweeperDone
}

func swaggerURL(host, port string) string {
	switch {
	case host == "":
		return "http://localhost:" + port + "/swagger/index.html"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/swagger/index.html"
	default:
		return "http://" + host + "/swagger/index.html"
	}
}
