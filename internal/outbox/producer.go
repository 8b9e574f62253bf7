package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

const (
	defaultWriteTimeout = 10 * time.Second
	// The dispatcher hands over whole batches, so the writer need not linger.
	writerBatchTimeout = 10 * time.Millisecond
)

// ProducerConfig tunes the Kafka writer behind KafkaProducer.
type ProducerConfig struct {
	Brokers      []string
	WriteTimeout time.Duration
	Logger       log.FieldLogger
}

// KafkaProducer writes dispatcher batches through one shared kafka.Writer.
// The topic travels on each message, so one writer serves every topic.
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer. Connections are opened lazily on
// the first write.
func NewKafkaProducer(cfg ProducerConfig) *KafkaProducer {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: writerBatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if cfg.Logger != nil {
		writer.ErrorLogger = kafka.LoggerFunc(cfg.Logger.WithField("component", "kafka_writer").Errorf)
	}
	return &KafkaProducer{writer: writer}
}

// WriteMessages delivers msgs to topic in one call.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	if topic == "" {
		return errors.New("kafka producer: topic is required")
	}
	return p.writer.WriteMessages(ctx, withTopic(topic, msgs)...)
}

// Close flushes and releases the writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

func withTopic(topic string, msgs []kafka.Message) []kafka.Message {
	out := make([]kafka.Message, len(msgs))
	for i, msg := range msgs {
		msg.Topic = topic
		out[i] = msg
	}
	return out
}
