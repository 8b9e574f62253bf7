package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/rajvarma2599/fitnessapp/internal/api"
	"github.com/rajvarma2599/fitnessapp/internal/config"
	"github.com/rajvarma2599/fitnessapp/internal/domain"
	"github.com/rajvarma2599/fitnessapp/internal/logging"
	"github.com/rajvarma2599/fitnessapp/internal/outbox"
	"github.com/rajvarma2599/fitnessapp/internal/persistence"
	"github.com/rajvarma2599/fitnessapp/internal/persistence/backend"
	httptransport "github.com/rajvarma2599/fitnessapp/internal/transport/http"
	"github.com/rajvarma2599/fitnessapp/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.Setup(logging.SetupParams{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobs, closeStorage, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open storage: %v", err)
	}
	closers := []func() error{closeStorage}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("resolve timezone: %v", err)
	}

	opts := []domain.Option{domain.WithLocation(loc), domain.WithLogger(logger)}

	var dispatcher *outbox.Dispatcher
	if cfg.EventsEnabled() {
		producer := outbox.NewKafkaProducer(outbox.ProducerConfig{Brokers: cfg.KafkaBrokers, Logger: logger})
		closers = append(closers, producer.Close)

		dispatcher = outbox.NewDispatcher(producer, outbox.Config{
			Topic:        cfg.WorkoutTopic,
			PollInterval: cfg.OutboxPollInterval,
			BatchSize:    cfg.OutboxBatchSize,
			MaxAttempts:  cfg.OutboxMaxAttempts,
		}, logger.WithField("component", "outbox"))
		go dispatcher.Start(ctx)

		opts = append(opts, domain.WithPublisher(dispatcher))
	} else {
		logger.Info("KAFKA_BROKERS not set; workout events are not published")
	}

	tracker, err := domain.NewTracker(ctx, persistence.NewAdapter(blobs, cfg.StorageKey), opts...)
	if err != nil {
		logger.Fatalf("load tracker: %v", err)
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Fatalf("parse templates: %v", err)
	}

	handler := api.NewHandler(tracker, renderer, logger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, httptransport.Chain(mux, httptransport.Recover(logger), httptransport.LogRequests(logger)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.WithFields(log.Fields{
			"address": cfg.HTTPAddress,
			"storage": cfg.StorageDriver,
			"records": len(tracker.Snapshot()),
		}).Info("fitness tracker listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	logger.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}

	cancel()
	if dispatcher != nil {
		dispatcher.Wait()
	}

	var closeErr error
	for i := len(closers) - 1; i >= 0; i-- {
		closeErr = multierr.Append(closeErr, closers[i]())
	}
	if closeErr != nil {
		logger.WithError(closeErr).Warn("shutdown cleanup incomplete")
	}
}
