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
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/rajvarma2599/fitnessapp/internal/config"
	"github.com/rajvarma2599/fitnessapp/internal/consumer"
	"github.com/rajvarma2599/fitnessapp/internal/domain"
	"github.com/rajvarma2599/fitnessapp/internal/logging"
	"github.com/rajvarma2599/fitnessapp/internal/persistence"
	"github.com/rajvarma2599/fitnessapp/internal/persistence/backend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.Setup(logging.SetupParams{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if !cfg.EventsEnabled() {
		logger.Fatal("KAFKA_BROKERS must be set for the replica consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobs, closeStorage, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open storage: %v", err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logger.WithError(err).Warn("storage close failed")
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("resolve timezone: %v", err)
	}

	replica, err := domain.NewTracker(ctx, persistence.NewAdapter(blobs, cfg.ReplicaStorageKey),
		domain.WithLocation(loc), domain.WithLogger(logger.WithField("component", "replica")))
	if err != nil {
		logger.Fatalf("load replica: %v", err)
	}
	handler := consumer.NewReplicaHandler(replica, logger.WithField("component", "replica"))

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}

	go func() {
		logger.WithField("address", cfg.MetricsAddress).Info("consumer metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server error")
		}
	}()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.KafkaBrokers,
		GroupID:         cfg.ConsumerGroupID,
		Topic:           cfg.WorkoutTopic,
		MinBytes:        1e3,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		RetentionTime:   24 * time.Hour,
		ReadLagInterval: -1,
	})

	proc := consumer.NewProcessor(reader, handler, consumer.WithLogger(logger.WithField("component", "consumer")))

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer reader.Close()

		logger.WithFields(log.Fields{
			"topic":   cfg.WorkoutTopic,
			"group":   cfg.ConsumerGroupID,
			"records": len(replica.Snapshot()),
		}).Info("consumer started")
		if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("consumer stopped with error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("consumer shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("metrics server shutdown error")
	}

	<-done
}
