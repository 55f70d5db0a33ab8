package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-api/config"
	"github.com/oksasatya/user-api/internal/application"
	"github.com/oksasatya/user-api/internal/infrastructure/messaging"
	pginfra "github.com/oksasatya/user-api/internal/infrastructure/postgres"
	"github.com/oksasatya/user-api/internal/infrastructure/search"
	"github.com/oksasatya/user-api/pkg/helpers"
)

// event_indexer keeps the Elasticsearch users index in step with the user
// events published by the API.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-indexer", cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	es, err := search.NewClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("elasticsearch client: %v", err)
	}
	if err := search.EnsureIndex(ctx, es, cfg.ESUsersIndex); err != nil {
		log.Fatalf("elasticsearch index: %v", err)
	}

	conn, err := helpers.DialRabbit(cfg.RabbitMQURL, cfg.RabbitMQDialTimeout)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := helpers.DeclareDurableQueue(conn, cfg.RabbitMQUserEventsQueue)
	if err != nil {
		log.Fatalf("queue declare: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	deliveries, err := ch.Consume(cfg.RabbitMQUserEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	projection := application.NewSearchProjection(
		pginfra.NewUserRepository(pool),
		search.NewUserIndexer(es, cfg.ESUsersIndex, logger),
		logger,
	)

	consumer := messaging.NewConsumer(projection.Handle, logger)
	consumer.RetryDelay = cfg.IndexerRetryDelay

	errc := make(chan error, 1)
	go func() { errc <- consumer.Run(ctx, deliveries) }()

	logger.WithFields(logrus.Fields{
		"queue":       cfg.RabbitMQUserEventsQueue,
		"dead_letter": helpers.DeadLetterQueue(cfg.RabbitMQUserEventsQueue),
	}).Info("event indexer listening")

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
		select {
		case <-errc:
		case <-time.After(2 * time.Second):
		}
	case err := <-errc:
		// broker dropped the connection or cancelled the consumer
		logger.WithError(err).Error("event indexer stopped consuming")
		os.Exit(1)
	}
}
