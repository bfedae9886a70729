package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	myPostgresRepo "github.com/linkfolio/backend/internal/adapters/db/postgres"
	s3store "github.com/linkfolio/backend/internal/adapters/storage/s3"
	myHTTP "github.com/linkfolio/backend/internal/adapters/transport/http"
	authJWT "github.com/linkfolio/backend/internal/app/auth/jwt"
	authsvc "github.com/linkfolio/backend/internal/app/auth/service"
	linksvc "github.com/linkfolio/backend/internal/app/links"
	usersvc "github.com/linkfolio/backend/internal/app/users"
	"github.com/linkfolio/backend/internal/infra/config"
	lg "github.com/linkfolio/backend/internal/infra/log"
	"github.com/linkfolio/backend/internal/infra/migrate"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	validate := validator.New()

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobs, err := s3store.New(rootCtx, cfg)
	if err != nil {
		zapLog.Fatal("failed to init blob store", zap.Error(err))
	}

	userRepo := myPostgresRepo.NewPostgresUserRepo(db)
	linkRepo := myPostgresRepo.NewPostgresLinkRepo(db)

	jwtUtil, err := authJWT.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	auth := authsvc.New(userRepo, jwtUtil, cfg, validate)
	users := usersvc.New(userRepo, linkRepo, blobs, validate)
	links := linksvc.New(linkRepo, validate)

	handler := myHTTP.NewHandler(auth, users, links, cfg, zapLog)
	router := myHTTP.NewRouter(handler, jwtUtil, redisCli, cfg, zapLog)

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		zapLog.Info("http server starting", zap.String("addr", cfg.HTTPAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			zapLog.Info("shutdown signal received")
		case <-ctx.Done():
		}

		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		return srv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
