package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"propdesk/pkg/logger"
	"propdesk/pkg/metrics"

	"github.com/IBM/sarama"
)

// Producer publishes booking notifications
type Producer interface {
	Publish(ctx context.Context, notification *BookingNotification) error
	Close() error
	HealthCheck(ctx context.Context) error
}

// KafkaProducerConfig contains configuration for the Kafka notification producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	ClientID         string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "booking-notifications",
		ClientID:         "propdesk",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// KafkaProducer handles publishing notifications to Kafka
type KafkaProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	logger   *logger.Logger
}

// saramaConfig translates cfg into a sarama producer config
func saramaConfig(cfg *KafkaProducerConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.RequiredAcks = cfg.RequiredAcks
	sc.Producer.Compression = cfg.CompressionType
	sc.Producer.Retry.Max = cfg.RetryMax
	sc.Producer.Timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	sc.Producer.Idempotent = cfg.IdempotentWrites
	sc.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	if cfg.IdempotentWrites {
		sc.Net.MaxOpenRequests = 1
	}
	// Hash on the booking id so one booking's events stay ordered
	sc.Producer.Partitioner = sarama.NewHashPartitioner
	return sc
}

// NewKafkaProducer connects a sync producer to cfg.Brokers
func NewKafkaProducer(cfg *KafkaProducerConfig) (*KafkaProducer, error) {
	if cfg == nil {
		cfg = DefaultKafkaProducerConfig()
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	kp := NewKafkaProducerWith(producer, cfg)
	kp.logger.Info("kafka notification producer created", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return kp, nil
}

// NewKafkaProducerWith wraps an existing sarama producer
func NewKafkaProducerWith(producer sarama.SyncProducer, cfg *KafkaProducerConfig) *KafkaProducer {
	return &KafkaProducer{producer: producer, config: cfg, logger: logger.GetDefault()}
}

// Publish sends one notification and waits for the broker ack
func (kp *KafkaProducer) Publish(ctx context.Context, notification *BookingNotification) error {
	payload, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.Topic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(payload),
		Headers:   createHeaders(notification),
		Timestamp: notification.OccurredAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		metrics.NotificationsFailed.WithLabelValues(string(notification.Type)).Inc()
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	kp.logger.DebugContext(ctx, "notification published",
		"topic", kp.config.Topic,
		"partition", partition,
		"offset", offset,
		"type", notification.Type,
		"booking_reference", notification.Reference,
	)
	return nil
}

func createHeaders(n *BookingNotification) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(n.ID.String())},
		{Key: []byte("notification_type"), Value: []byte(n.Type)},
		{Key: []byte("booking_id"), Value: []byte(n.BookingID.String())},
		{Key: []byte("event_id"), Value: []byte(n.EventID.String())},
		{Key: []byte("version"), Value: []byte("1.0")},
		{Key: []byte("producer"), Value: []byte("propdesk")},
		{Key: []byte("occurred_at"), Value: []byte(n.OccurredAt.Format(time.RFC3339))},
	}
}

// Close closes the Kafka producer
func (kp *KafkaProducer) Close() error {
	if kp.producer == nil {
		return nil
	}
	if err := kp.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	kp.logger.Info("kafka notification producer closed")
	return nil
}

// HealthCheck validates configuration; connectivity failures surface on the
// first real send.
func (kp *KafkaProducer) HealthCheck(ctx context.Context) error {
	if kp.producer == nil {
		return errors.New("kafka producer is nil")
	}
	if kp.config == nil || kp.config.Topic == "" {
		return errors.New("notification topic not configured")
	}
	return nil
}

// LogProducer stands in for Kafka when it is disabled. Notifications are
// written to the log and dropped.
type LogProducer struct {
	logger *logger.Logger
}

func NewLogProducer() *LogProducer {
	return &LogProducer{logger: logger.GetDefault()}
}

func (p *LogProducer) Publish(ctx context.Context, n *BookingNotification) error {
	p.logger.InfoContext(ctx, "notification (kafka disabled)",
		"type", n.Type,
		"booking_reference", n.Reference,
		"status", n.Status,
	)
	return nil
}

func (p *LogProducer) Close() error                      { return nil }
func (p *LogProducer) HealthCheck(context.Context) error { return nil }

var (
	_ Producer = (*KafkaProducer)(nil)
	_ Producer = (*LogProducer)(nil)
)
