package deadletterqueue

import (
	"context"
	"errors"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeChannel numbers publishes from 1 like a channel in confirm mode.
// confirmsFor decides which confirms the broker sends back after a publish;
// by default the publish itself is confirmed with ack.
type fakeChannel struct {
	published   []amqp.Publishing
	keys        []string
	err         error
	ack         bool
	confirms    chan amqp.Confirmation
	noConfirm   bool
	nextSeqNo   uint64
	confirmsFor func(deliveryTag uint64) []amqp.Confirmation
}

func (f *fakeChannel) GetNextPublishSeqNo() uint64 {
	return f.nextSeqNo
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	deliveryTag := f.nextSeqNo
	f.nextSeqNo++
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)

	switch {
	case f.confirmsFor != nil:
		for _, confirmation := range f.confirmsFor(deliveryTag) {
			f.confirms <- confirmation
		}
	case !f.noConfirm:
		f.confirms <- amqp.Confirmation{DeliveryTag: deliveryTag, Ack: f.ack}
	}
	return nil
}

func newTestService(ch *fakeChannel, timeout time.Duration) *Service {
	ch.confirms = make(chan amqp.Confirmation, confirmBuffer)
	ch.nextSeqNo = 1
	return &Service{
		ch:             ch,
		log:            zap.NewNop(),
		queueName:      constvars.RabbitMQDeadLetterQueue,
		publishTimeout: timeout,
		confirms:       ch.confirms,
	}
}

func sampleNotification() models.DeadLetterNotification {
	return models.DeadLetterNotification{
		RunID:        "run-1",
		ResourceType: "Observation",
		ID:           "o1",
		Reason:       models.DeadLetterReasonValidationError,
		Details:      []string{"Observation missing status"},
		Timestamp:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestService_Publish(t *testing.T) {
	t.Run("confirmed publish", func(t *testing.T) {
		ch := &fakeChannel{ack: true}
		svc := newTestService(ch, time.Second)

		err := svc.Publish(context.Background(), sampleNotification())

		require.NoError(t, err)
		require.Len(t, ch.published, 1)
		assert.Equal(t, constvars.RabbitMQDeadLetterQueue, ch.keys[0])
		assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
		assert.Equal(t, "o1", decoded["id"])
		assert.Equal(t, "validation_error", decoded["reason"])
		assert.Equal(t, "run-1", decoded["runId"])
	})

	t.Run("nack is an error", func(t *testing.T) {
		ch := &fakeChannel{ack: false}
		svc := newTestService(ch, time.Second)

		err := svc.Publish(context.Background(), sampleNotification())

		var customErr *exceptions.CustomError
		require.ErrorAs(t, err, &customErr)
		assert.ErrorIs(t, err, errNotConfirmed)
	})

	t.Run("publish failure is wrapped", func(t *testing.T) {
		ch := &fakeChannel{err: errors.New("channel closed")}
		svc := newTestService(ch, time.Second)

		err := svc.Publish(context.Background(), sampleNotification())

		var customErr *exceptions.CustomError
		require.ErrorAs(t, err, &customErr)
		assert.Contains(t, customErr.DevMessage, "channel closed")
	})

	t.Run("missing confirm times out", func(t *testing.T) {
		ch := &fakeChannel{noConfirm: true}
		svc := newTestService(ch, 20*time.Millisecond)

		err := svc.Publish(context.Background(), sampleNotification())

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("closed confirm channel is an error", func(t *testing.T) {
		ch := &fakeChannel{noConfirm: true}
		svc := newTestService(ch, time.Second)
		close(ch.confirms)

		err := svc.Publish(context.Background(), sampleNotification())

		assert.ErrorIs(t, err, errConfirmClosed)
	})
}

func TestService_Publish_LateConfirmAfterTimeout(t *testing.T) {
	ch := &fakeChannel{}
	svc := newTestService(ch, 20*time.Millisecond)

	// the broker does not answer the first publish in time
	ch.confirmsFor = func(deliveryTag uint64) []amqp.Confirmation { return nil }
	err := svc.Publish(context.Background(), sampleNotification())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// its nack arrives late, right before the ack for the second publish
	ch.confirmsFor = func(deliveryTag uint64) []amqp.Confirmation {
		return []amqp.Confirmation{
			{DeliveryTag: deliveryTag - 1, Ack: false},
			{DeliveryTag: deliveryTag, Ack: true},
		}
	}
	err = svc.Publish(context.Background(), sampleNotification())

	require.NoError(t, err)
	assert.Len(t, ch.published, 2)
	assert.Empty(t, ch.confirms)
}

func TestService_Publish_NackBelongsToOwnMessage(t *testing.T) {
	ch := &fakeChannel{}
	svc := newTestService(ch, time.Second)

	ch.confirmsFor = func(deliveryTag uint64) []amqp.Confirmation {
		return []amqp.Confirmation{{DeliveryTag: deliveryTag, Ack: deliveryTag != 2}}
	}

	require.NoError(t, svc.Publish(context.Background(), sampleNotification()))
	assert.ErrorIs(t, svc.Publish(context.Background(), sampleNotification()), errNotConfirmed)
	require.NoError(t, svc.Publish(context.Background(), sampleNotification()))
}
