package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

const defaultClientID = "nora-storefront"

// Producer публикует события витрины в Kafka. Публикация синхронная и
// идемпотентная: события заказов не должны дублироваться при ретраях брокера.
type Producer struct {
	producer sarama.SyncProducer
	logger   *log.Entry
}

// Option настраивает producer при создании.
type Option func(*sarama.Config)

// WithClientID задаёт client.id вместо значения по умолчанию.
func WithClientID(id string) Option {
	return func(cfg *sarama.Config) {
		cfg.ClientID = id
	}
}

// WithRetryMax задаёт число повторов отправки.
func WithRetryMax(retries int) Option {
	return func(cfg *sarama.Config) {
		cfg.Producer.Retry.Max = retries
	}
}

// NewProducer создаёт синхронный producer. Идемпотентность требует
// подтверждения всех ISR и не больше одного запроса в полёте.
func NewProducer(brokers []string, opts ...Option) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = defaultClientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	for _, opt := range opts {
		opt(cfg)
	}

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Producer{
		producer: producer,
		logger:   log.WithField("component", "kafka-producer"),
	}, nil
}

// PublishEvent сериализует событие в JSON и отправляет его в топик.
// Ключ — customer_id, чтобы события одного покупателя попадали в одну партицию.
func (p *Producer) PublishEvent(topic string, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
	})
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic": topic,
			"key":   key,
		}).Error("failed to publish event")
		return fmt.Errorf("publish event to %s: %w", topic, err)
	}

	p.logger.WithFields(log.Fields{
		"topic":     topic,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	}).Debug("event published")
	return nil
}

// Close закрывает соединение с брокерами.
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
