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

	"github.com/accountsvc/account-service/internal/command"
	"github.com/accountsvc/account-service/internal/config"
	"github.com/accountsvc/account-service/internal/database"
	"github.com/accountsvc/account-service/internal/events"
	"github.com/accountsvc/account-service/internal/handler"
	"github.com/accountsvc/account-service/internal/middleware"
	"github.com/accountsvc/account-service/internal/query"
	redisClient "github.com/accountsvc/account-service/internal/redis"
	"github.com/accountsvc/account-service/internal/repository"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := setupLogger(cfg.Env, os.Stdout)
	slog.SetDefault(log)
	log.Info("starting account service", slog.String("env", cfg.Env), slog.String("port", cfg.Port))

	if err := run(cfg, log); err != nil {
		log.Error("account service stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.App, log *slog.Logger) error {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database connection (write store)
	db, err := database.Open(database.Config{
		DSN:             cfg.DB.URI,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		QueryTimeout:    cfg.DB.QueryTimeout,
		Logger:          log,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	writeRepo := repository.NewAccountWriteRepository(db)
	if err := writeRepo.EnsureSchema(rootCtx); err != nil {
		return err
	}

	// Redis connection (read model store + event streaming), optional
	var (
		rdb       *goredis.Client
		publisher command.EventPublisher
	)
	if cfg.Redis.Enabled() {
		redis, err := redisClient.NewClient(rootCtx, redisClient.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer redis.Close()
		rdb = redis.Client
		publisher = events.NewPublisher(redis.Client, events.AccountEventsStream)
		log.Info("redis read model enabled", slog.String("addr", cfg.Redis.Addr))
	} else {
		log.Warn("REDIS_ADDR not set, running without read model and event stream")
	}

	// --- CQRS wiring ---
	readRepo := repository.NewAccountReadRepository(writeRepo, rdb, cfg.Redis.CacheTTL)
	commandSvc := command.NewAccountCommandService(writeRepo, readRepo, publisher, log)
	querySvc := query.NewAccountQueryService(readRepo)
	accountHandler := handler.NewAccountHandler(commandSvc, querySvc)

	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(accountHandler, handler.RouterConfig{
		Logger:   log,
		Security: middleware.SecurityConfig{ForceHTTPS: cfg.ForceHTTPS},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-rootCtx.Done():
	}
	stop()
	log.Info("received shutdown signal, shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server shut down gracefully")
	return nil
}
