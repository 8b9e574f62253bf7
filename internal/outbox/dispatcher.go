// Package outbox queues workout events and delivers them to Kafka in batches.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/rajvarma2599/fitnessapp/internal/domain"
	"github.com/rajvarma2599/fitnessapp/internal/events"
)

// ErrQueueFull is returned when the pending queue is at capacity.
var ErrQueueFull = errors.New("outbox queue is full")

// PartitionKey routes every workout event to one partition so consumers see
// them in log order.
const PartitionKey = "workouts"

const shutdownFlushTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Config tunes the dispatcher.
type Config struct {
	Topic        string
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	MaxPending   int
}

// Message is a queued event awaiting delivery.
type Message struct {
	EventID   string
	EventType string
	Payload   json.RawMessage
	CreatedAt time.Time
	Attempts  int
}

// Dispatcher implements domain.Publisher by queueing events in memory and
// draining them to Kafka on a poll interval.
type Dispatcher struct {
	producer         messageWriter
	cfg              Config
	logger           log.FieldLogger
	mu               sync.Mutex
	pending          []Message
	shutdownComplete chan struct{}
}

var _ domain.Publisher = (*Dispatcher)(nil)

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(producer messageWriter, cfg Config, logger log.FieldLogger) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = 10000
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Dispatcher{
		producer:         producer,
		cfg:              cfg,
		logger:           logger,
		shutdownComplete: make(chan struct{}),
	}
}

// PublishWorkoutLogged queues a WorkoutLogged event for the record.
func (d *Dispatcher) PublishWorkoutLogged(ctx context.Context, record domain.WorkoutRecord) error {
	event := events.WorkoutLogged{
		EventID:    uuid.NewString(),
		WorkoutID:  record.ID,
		Type:       record.Type,
		Duration:   record.DurationMinutes,
		Calories:   record.CaloriesBurned,
		Notes:      record.Notes,
		OccurredAt: record.OccurredAt.UTC(),
		Version:    "v1",
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return d.enqueue(Message{
		EventID:   event.EventID,
		EventType: events.WorkoutLoggedType,
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	})
}

func (d *Dispatcher) enqueue(msg Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) >= d.cfg.MaxPending {
		droppedCounter.Inc()
		return ErrQueueFull
	}
	d.pending = append(d.pending, msg)
	pendingGauge.Set(float64(len(d.pending)))
	return nil
}

// Pending reports the number of queued events.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Start launches the polling loop. It should be called in a goroutine. When
// ctx is cancelled one last flush is attempted before returning.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		select {
		case <-ctx.Done():
			d.flush()
			return
		case <-ticker.C:
		}

		if err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.WithError(err).Warn("outbox dispatcher error")
		}
	}
}

// Wait waits until dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
	defer cancel()

	for d.Pending() > 0 {
		if err := d.processBatch(ctx); err != nil {
			d.logger.WithError(err).WithField("pending", d.Pending()).Warn("outbox flush on shutdown incomplete")
			return
		}
	}
}

// processBatch delivers up to BatchSize queued events. On failure the batch
// stays queued; events that have used up MaxAttempts are dropped.
func (d *Dispatcher) processBatch(ctx context.Context) error {
	d.mu.Lock()
	n := len(d.pending)
	if n > d.cfg.BatchSize {
		n = d.cfg.BatchSize
	}
	batch := append([]Message(nil), d.pending[:n]...)
	d.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	records := make([]kafka.Message, 0, len(batch))
	for _, msg := range batch {
		records = append(records, kafka.Message{
			Key:   []byte(PartitionKey),
			Value: msg.Payload,
			Time:  msg.CreatedAt,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(msg.EventType)},
				{Key: "event_id", Value: []byte(msg.EventID)},
			},
		})
	}

	err := d.producer.WriteMessages(ctx, d.cfg.Topic, records...)

	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() { pendingGauge.Set(float64(len(d.pending))) }()

	if err == nil {
		d.pending = d.pending[n:]
		deliveredCounter.Add(float64(n))
		return nil
	}

	failedCounter.Add(float64(n))
	kept := d.pending[:0]
	dropped := 0
	for i, msg := range d.pending {
		if i < n {
			msg.Attempts++
			if msg.Attempts >= d.cfg.MaxAttempts {
				dropped++
				continue
			}
		}
		kept = append(kept, msg)
	}
	d.pending = kept
	if dropped > 0 {
		droppedCounter.Add(float64(dropped))
		d.logger.WithField("dropped", dropped).Error("outbox events dropped after max attempts")
	}
	return fmt.Errorf("deliver %d events: %w", n, err)
}
