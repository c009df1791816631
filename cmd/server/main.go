package main // Entry point package

import (
	"context"   // context drives startup timeouts and shutdown
	"errors"    // errors distinguishes a clean server close
	"fmt"       // fmt prints fatal startup errors before the logger exists
	"net/http"  // net/http provides ErrServerClosed
	"os"        // os exits with a status code
	"os/signal" // signal catches SIGINT and SIGTERM
	"syscall"   // syscall names SIGTERM
	"time"      // time bounds the shutdown

	"github.com/labstack/echo/v4" // Echo web framework
	"go.uber.org/zap"             // structured logging

	"github.com/iliyamo/seat-commit-coordinator/internal/config"     // environment configuration
	"github.com/iliyamo/seat-commit-coordinator/internal/database"   // SQL connection and schema
	"github.com/iliyamo/seat-commit-coordinator/internal/handler"    // HTTP handlers
	"github.com/iliyamo/seat-commit-coordinator/internal/logger"     // zap + lumberjack setup
	"github.com/iliyamo/seat-commit-coordinator/internal/middleware" // request logging, recovery, rate limiting
	"github.com/iliyamo/seat-commit-coordinator/internal/queue"      // booking.committed publisher and consumer
	"github.com/iliyamo/seat-commit-coordinator/internal/repository" // ledger, catalog and hold store
	"github.com/iliyamo/seat-commit-coordinator/internal/router"     // route registration
	"github.com/iliyamo/seat-commit-coordinator/internal/service"    // seat coordinator
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogPath, cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db, err := database.Open(startCtx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(startCtx, db, cfg.DBDriver); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	rdb, err := config.NewRedisClient(startCtx)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	opts := []service.Option{service.WithKeyPrefix(cfg.HoldKeyPrefix)}
	if cfg.AMQPURL != "" {
		pub := queue.NewPublisher(cfg.AMQPURL, cfg.AMQPQueue, log)
		defer pub.Close()
		opts = append(opts, service.WithEvents(pub))

		audit := queue.NewAuditConsumer(cfg.AMQPURL, cfg.AMQPQueue, logger.Rotating(cfg.AuditLogPath), log)
		go func() {
			if err := audit.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set; booking events disabled")
	}

	coord := service.NewCoordinator(
		repository.NewShowRepo(db, cfg.DBDriver),
		repository.NewBookingRepo(db, cfg.DBDriver),
		repository.NewHoldStore(rdb),
		cfg.HoldTTL,
		log,
		opts...,
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(log), middleware.Recover(log))

	router.RegisterRoutes(e, map[string]handler.Pinger{
		"database": db.PingContext,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})
	router.RegisterBookings(e, handler.NewBookingHandler(coord, log), router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.Duration("hold_ttl", cfg.HoldTTL))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return e.Shutdown(shutdownCtx)
}
