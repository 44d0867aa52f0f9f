package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"parcelshare/cmd"
	"parcelshare/internal/adapters/out/payment"
	"parcelshare/internal/adapters/out/postgres"
	"parcelshare/internal/adapters/out/rabbitmq"
	redisout "parcelshare/internal/adapters/out/redis"
	"parcelshare/internal/core/ports"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := newLogger(configs.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB := mustGormOpen(configs)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     configs.RedisAddr,
		Password: configs.RedisPassword,
		DB:       configs.RedisDB,
	})
	defer redisClient.Close()

	publisher := newPublisher(configs, logger)
	defer publisher.Close()

	app, err := cmd.NewCompositionRoot(configs, cmd.Infrastructure{
		DB:        gormDB,
		Gateway:   newGateway(configs, logger),
		Publisher: publisher,
		Deduper:   redisout.NewCallbackDeduper(redisClient, redisout.DefaultPrefix, configs.CallbackDedupTTL),
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	if err := run(ctx, app, configs.HTTPPort, logger); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func run(ctx context.Context, app *cmd.CompositionRoot, port string, logger *slog.Logger) error {
	e, err := app.NewRouter(ctx)
	if err != nil {
		return err
	}

	jobManager := app.NewJobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "port", port)
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func mustGormOpen(configs cmd.Config) *gorm.DB {
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{DSN: configs.DSN(), PreferSimpleProtocol: true}), &gorm.Config{})
	if err != nil {
		log.Fatalf("connection to postgres through gorm: %v", err)
	}

	if err := gormDB.AutoMigrate(postgres.Models()...); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	return gormDB
}

func newGateway(configs cmd.Config, logger *slog.Logger) ports.PaymentGateway {
	if configs.GatewayURL == "" {
		logger.Warn("GATEWAY_URL is empty, using the sandbox payment gateway")
		return payment.NewSandboxGateway()
	}

	gateway, err := payment.NewHTTPGateway(configs.GatewayURL, configs.GatewayAPIKey, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		log.Fatalf("invalid payment gateway: %v", err)
	}
	return gateway
}

type closablePublisher interface {
	ports.EventPublisher
	Close() error
}

func newPublisher(configs cmd.Config, logger *slog.Logger) closablePublisher {
	if configs.RabbitMQURL == "" {
		logger.Warn("RABBITMQ_URL is empty, assignment events are only logged")
		return rabbitmq.NewFallbackPublisher(logger)
	}

	publisher, err := rabbitmq.NewEventPublisher(configs.RabbitMQURL, configs.RabbitMQExchange, logger)
	if err != nil {
		logger.Error("rabbitmq unavailable, assignment events are only logged", "error", err)
		return rabbitmq.NewFallbackPublisher(logger)
	}
	return publisher
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
