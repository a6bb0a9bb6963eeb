package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"staybook/pkg/config"
	"staybook/pkg/kafka"
)

// The notifier tails the reservation event stream and records the guest and
// owner notifications that would go out for each lifecycle change. Delivery
// channels (email, SMS) hang off the handler below.
func main() {
	cfg := config.Load("notifier")

	consumer, err := kafka.NewConsumer(
		cfg.KafkaBrokers,
		cfg.KafkaTopic,
		cfg.KafkaGroupID,
		notify(cfg),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Notifier started",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaTopic,
		"group_id", cfg.KafkaGroupID,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Fatal("Consumer stopped unexpectedly", "error", err)
	}

	cfg.Log.Info("Notifier stopped gracefully")
}

func notify(cfg *config.Config) kafka.EventHandler {
	return func(ctx context.Context, event kafka.ReservationEvent) error {
		switch event.Type {
		case kafka.EventBookingCreated, kafka.EventBookingUpdated, kafka.EventBookingCancelled:
			cfg.Log.Info("Guest notification queued",
				"type", event.Type,
				"booking_id", event.ReservationID,
				"property_id", event.PropertyID,
			)
		case kafka.EventBlockCreated, kafka.EventBlockUpdated, kafka.EventBlockCancelled:
			cfg.Log.Info("Owner notification queued",
				"type", event.Type,
				"block_id", event.ReservationID,
				"property_id", event.PropertyID,
			)
		default:
			cfg.Log.Warn("Unknown event type", "type", event.Type)
		}
		return nil
	}
}
