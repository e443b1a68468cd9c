package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asquebay/order-tracking-api/internal/config"
	"github.com/asquebay/order-tracking-api/internal/lib/logger"
	"github.com/asquebay/order-tracking-api/internal/repository/memory"
	"github.com/asquebay/order-tracking-api/internal/repository/postgres"
	"github.com/asquebay/order-tracking-api/internal/service"
	graphqltransport "github.com/asquebay/order-tracking-api/internal/transport/graphql"
	httptransport "github.com/asquebay/order-tracking-api/internal/transport/http"
	"github.com/asquebay/order-tracking-api/internal/transport/kafka"
)

func main() {
	// 1. Инициализация конфигурации
	cfg := config.MustLoad(config.Path())

	// 2. Инициализация логгера
	log := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	log.Info("starting order-tracking-api",
		slog.String("log_level", cfg.Logger.Level),
		slog.String("storage", cfg.Storage.Driver),
	)

	// 3. Инициализация хранилища
	initCtx, initCancel := context.WithTimeout(context.Background(), 15*time.Second)
	orderRepo, closeRepo, err := newRepository(initCtx, cfg, log)
	initCancel()
	if err != nil {
		log.Error("failed to init storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepo()

	// 4. Инициализация сервисного слоя
	orderSvc := service.NewOrderService(orderRepo, log)

	// 5. REST и GraphQL на одном сервере
	handler := httptransport.NewHandler(orderSvc, log,
		httptransport.WithLegacyErrors(cfg.HTTPServer.LegacyErrors),
	)
	gqlHandler, err := graphqltransport.NewHandler(orderSvc, cfg.GraphQL.GraphiQL)
	if err != nil {
		log.Error("failed to build graphql handler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	handler.Mount(cfg.GraphQL.Path, gqlHandler)

	// 6. Kafka-консьюмер, если включен
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		consumer = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, orderSvc, log)
		go consumer.Run(ctx)
	}

	// 7. Запуск HTTP-сервера
	httpServer := httptransport.NewServer(cfg.HTTPServer.Port, handler, cfg.HTTPServer.Timeout, log)
	log.Info("starting http server",
		slog.String("port", cfg.HTTPServer.Port),
		slog.String("graphql_path", cfg.GraphQL.Path),
		slog.Bool("graphiql", cfg.GraphQL.GraphiQL),
	)

	go func() {
		if err := httpServer.Run(); err != nil {
			log.Error("http server failed to start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// 8. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down application")
	cancel() // сигнал для консьюмера на завершение

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", slog.String("error", err.Error()))
	}

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Error("error closing kafka consumer", slog.String("error", err.Error()))
		}
	}

	log.Info("application stopped")
}

// newRepository выбирает хранилище по storage.driver
// для postgres заодно создаёт таблицу, если её нет
func newRepository(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.OrderRepository, func(), error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("using in-memory storage, data will be lost on restart")
		return memory.NewOrderRepository(), func() {}, nil
	}

	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info("successfully connected to postgres")

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return postgres.NewOrderRepository(pool), pool.Close, nil
}
