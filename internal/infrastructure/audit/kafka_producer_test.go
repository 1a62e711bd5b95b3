package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/crs/internal/domain/models"
	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/logger"
)

type fakeWriter struct {
	messages  []kafka.Message
	failUntil int
	calls     int
	closed    bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.calls++
	if f.calls <= f.failUntil {
		return errors.New("broker unavailable")
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestProducer(w messageWriter, maxElapsed time.Duration) *KafkaProducer {
	return &KafkaProducer{
		writer:          w,
		log:             logger.NewNoopLogger(),
		maxRetryElapsed: maxElapsed,
	}
}

func TestKafkaProducer_PublishKeysByServiceName(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w, time.Second)

	event := models.NewAuditEvent(constants.AuditEventServicePublished).
		ForService("creditdefault", "1.0.0", 1).
		WithClient("analyst")
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.messages, 1)
	assert.Equal(t, []byte("creditdefault"), w.messages[0].Key)
	assert.Contains(t, string(w.messages[0].Value), `"service_published"`)
	assert.Contains(t, string(w.messages[0].Value), `"creditdefault"`)
}

func TestKafkaProducer_PublishRetriesTransientFailure(t *testing.T) {
	w := &fakeWriter{failUntil: 2}
	p := newTestProducer(w, 5*time.Second)

	event := models.NewAuditEvent(constants.AuditEventScoreRequested).
		ForService("creditdefault", "1.0.0", 3)
	require.NoError(t, p.Publish(context.Background(), event))

	assert.Equal(t, 3, w.calls)
	assert.Len(t, w.messages, 1)
}

func TestKafkaProducer_PublishGivesUpAfterElapsedCap(t *testing.T) {
	w := &fakeWriter{failUntil: 1 << 30}
	p := newTestProducer(w, 50*time.Millisecond)

	event := models.NewAuditEvent(constants.AuditEventServiceDeleted).
		ForService("creditdefault", "1.0.0", 2)
	err := p.Publish(context.Background(), event)
	assert.Error(t, err)
	assert.Empty(t, w.messages)
}

func TestKafkaProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w, time.Second)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher()
	assert.NoError(t, p.Publish(context.Background(), models.NewAuditEvent(constants.AuditEventTokenIssued)))
	assert.NoError(t, p.Close())
}
