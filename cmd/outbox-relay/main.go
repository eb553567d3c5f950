package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/config"
	"github.com/taskdesk/taskdesk/pkg/outbox"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
)

// The relay drains the domain_events outbox table into Kafka so integration
// consumers (reporting, chat bridges) see task and project events without
// touching the API database.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	db, err := postgres.NewStore(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	writer := newWriter(cfg.Kafka.Brokers, cfg.Kafka.EventTopic)
	defer writer.Close()

	dlqWriter := newWriter(cfg.Kafka.Brokers, cfg.Kafka.DLQTopic)
	defer dlqWriter.Close()

	repo := postgres.NewOutboxRepository(db.DB())
	relay := outbox.NewRelay(repo, writer, dlqWriter, logger, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)

	logger.Info("outbox relay starting",
		zap.String("brokers", strings.Join(cfg.Kafka.Brokers, ",")),
		zap.String("topic", cfg.Kafka.EventTopic),
		zap.String("dlq_topic", cfg.Kafka.DLQTopic),
		zap.Duration("poll_interval", cfg.Outbox.PollInterval),
		zap.Int("batch_size", cfg.Outbox.BatchSize))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := relay.Run(ctx); err != nil && err != context.Canceled {
			logger.Fatal("outbox relay stopped with error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("outbox relay shutting down")
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		Async:    false,
	})
}
