// Package audit publishes service lifecycle events to Kafka.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/crs/internal/config"
	"github.com/turtacn/crs/internal/domain/models"
	"github.com/turtacn/crs/internal/domain/service"
	"github.com/turtacn/crs/pkg/logger"
)

// messageWriter is the subset of kafka.Writer the producer needs. Tests
// substitute a fake.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer is a Kafka-backed AuditPublisher. Writes are retried with
// exponential backoff up to the configured elapsed-time cap; after that the
// event is dropped and logged. Audit loss never fails the caller's request.
type KafkaProducer struct {
	writer          messageWriter
	log             logger.Logger
	maxRetryElapsed time.Duration
}

// NewKafkaProducer creates an AuditPublisher over the configured brokers.
func NewKafkaProducer(cfg *config.KafkaConfig, log logger.Logger) service.AuditPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaProducer{
		writer:          writer,
		log:             log.WithComponent("audit"),
		maxRetryElapsed: time.Duration(cfg.MaxRetryElapsed) * time.Second,
	}
}

// Publish sends one audit event, keyed by service name so lifecycle events
// for a service stay ordered within a partition.
func (p *KafkaProducer) Publish(ctx context.Context, event *models.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error(ctx, "failed to marshal audit event", err,
			logger.String("event_type", string(event.Type)),
		)
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.ServiceName),
		Value: payload,
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = p.maxRetryElapsed
	writeOnce := func() error {
		return p.writer.WriteMessages(ctx, msg)
	}
	if err := backoff.Retry(writeOnce, backoff.WithContext(policy, ctx)); err != nil {
		p.log.Error(ctx, "dropping audit event after retries", err,
			logger.String("event_type", string(event.Type)),
			logger.String("service", event.ServiceName),
		)
		return err
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// noopPublisher is used when Kafka is disabled.
type noopPublisher struct{}

// NewNoopPublisher returns an AuditPublisher that discards every event.
func NewNoopPublisher() service.AuditPublisher {
	return &noopPublisher{}
}

func (noopPublisher) Publish(context.Context, *models.AuditEvent) error { return nil }

func (noopPublisher) Close() error { return nil }
