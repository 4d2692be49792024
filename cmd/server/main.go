package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"staffdir/internal/config"
	apphttp "staffdir/internal/http"
	"staffdir/internal/repository"
	redisrepo "staffdir/internal/repository/redis"
	"staffdir/internal/repository/sqlite"
	"staffdir/internal/service"
	"staffdir/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	employeeRepo := sqlite.NewEmployeeRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := employeeRepo.Init(ctx); err != nil {
		logger.Fatalf("init employee repository: %v", err)
	}

	tokenRepo, err := buildRefreshTokenRepo(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatalf("setup refresh token store: %v", err)
	}

	codec, err := token.NewCodec(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute)
	if err != nil {
		logger.Fatalf("setup token codec: %v", err)
	}

	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(userService, tokenRepo, codec, time.Duration(cfg.Auth.RefreshTTLMinutes)*time.Minute)
	employeeService := service.NewEmployeeService(employeeRepo)

	go sweepExpiredTokens(ctx, tokenRepo, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(authService, userService, employeeService, codec, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildRefreshTokenRepo(ctx context.Context, cfg config.Config, db *sql.DB, logger *logrus.Logger) (repository.RefreshTokenRepository, error) {
	if cfg.Auth.RefreshStore == "redis" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
		repo := redisrepo.NewRefreshTokenRepository(client)
		if err := repo.Init(ctx); err != nil {
			return nil, err
		}
		logger.Infof("using redis refresh token store at %s", cfg.Redis.Addr)
		return repo, nil
	}

	repo := sqlite.NewRefreshTokenRepository(db)
	if err := repo.Init(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func sweepExpiredTokens(ctx context.Context, tokens repository.RefreshTokenRepository, logger *logrus.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.DeleteExpired(ctx)
			if err != nil {
				logger.Warnf("sweep expired refresh tokens: %v", err)
				continue
			}
			if n > 0 {
				logger.Infof("removed %d expired refresh tokens", n)
			}
		}
	}
}
