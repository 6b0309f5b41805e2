package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/conduit-identity/config"
	"github.com/oksasatya/conduit-identity/internal/infrastructure/events"
	"github.com/oksasatya/conduit-identity/pkg/helpers"
)

// events_worker drains the user events queue into the Elasticsearch
// profile index.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-events-worker", cfg.Env)

	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set; events worker disabled")
		return
	}
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		logger.Fatal("ELASTICSEARCH_ADDRS not configured")
	}
	es, err := helpers.NewESClient(context.Background(), addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Fatal("elasticsearch client")
	}
	sink := events.NewSearchSink(es, cfg.ESUsersIndex)
	if err := sink.EnsureIndex(context.Background()); err != nil {
		logger.WithError(err).Fatal("ensure profile index")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue, 16)
	if err != nil {
		logger.WithError(err).Fatal("rabbitmq consumer")
	}
	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			entry := logger.WithFields(logrus.Fields{"message_id": msg.MessageId, "type": msg.Type})
			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			ev, err := events.Forward(c, msg.Body, sink)
			cancel()
			switch {
			case errors.Is(err, events.ErrMalformedEvent):
				entry.WithError(err).Warn("dropping user event")
				_ = msg.Nack(false, false)
			case err != nil:
				entry.WithError(err).Error("projecting user event failed; requeueing")
				_ = msg.Nack(false, true)
			default:
				entry.WithField("email", ev.Email).Debug("user event projected")
				_ = msg.Ack(false)
			}
		}
	}()

	logger.Infof("events worker listening on queue=%s", cfg.RabbitMQUserEventsQueue)
	<-ctx.Done()
	logger.Info("shutting down")
	consumer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
