package main

import (
	"context"
	"time"

	blockhandler "staybook/internal/blocks/handler"
	blockrepository "staybook/internal/blocks/repository"
	blockservice "staybook/internal/blocks/service"
	blockvalidator "staybook/internal/blocks/validator"
	bookinghandler "staybook/internal/bookings/handler"
	bookingrepository "staybook/internal/bookings/repository"
	bookingservice "staybook/internal/bookings/service"
	bookingvalidator "staybook/internal/bookings/validator"
	propertyrepository "staybook/internal/properties/repository"
	propertyservice "staybook/internal/properties/service"
	"staybook/internal/reservations"
	"staybook/pkg/app"
	"staybook/pkg/clock"
	"staybook/pkg/config"
	"staybook/pkg/kafka"
)

func main() {
	cfg := config.Load("reservations")
	cfg.SetMongo()

	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := reservations.EnsureLockIndexes(indexCtx, cfg); err != nil {
		cfg.Log.Fatal("Failed to ensure lock indexes", "error", err)
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, "reservations")
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}()

	clk := clock.System()

	propertyRepo := propertyrepository.NewMongoPropertyRepository(cfg)
	properties := propertyservice.NewPropertyService(propertyRepo, cfg)

	locks := reservations.NewPropertyLockRepository(cfg, clk)

	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)
	blockRepo := blockrepository.NewMongoBlockRepository(cfg)

	bookings := bookingservice.NewBookingService(
		bookingRepo,
		blockRepo,
		properties,
		locks,
		bookingvalidator.NewBookingValidator(cfg.Log, clk),
		clk,
		producer,
		cfg,
	)
	blocks := blockservice.NewBlockService(
		blockRepo,
		properties,
		locks,
		blockvalidator.NewBlockValidator(cfg.Log, clk),
		clk,
		producer,
		cfg,
	)

	application := app.NewApplication(cfg)
	application.SetApp(
		bookinghandler.NewBookingHandler(bookings, cfg.Log),
		blockhandler.NewBlockHandler(blocks, cfg.Log),
	)
	application.Run()
}
