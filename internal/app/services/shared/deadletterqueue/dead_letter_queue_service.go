package deadletterqueue

import (
	"context"
	"errors"
	"fhir-ingestion-service/internal/app/contracts"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/exceptions"
	"fhir-ingestion-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var (
	errNotConfirmed  = errors.New("message not confirmed")
	errConfirmClosed = errors.New("confirm channel closed")
)

// confirmBuffer leaves room for late confirms of publishes that timed out.
const confirmBuffer = 64

type publisher interface {
	GetNextPublishSeqNo() uint64
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Service announces dead-lettered resources on a durable queue. Publishes
// are serialised because an AMQP channel is not safe for concurrent use.
type Service struct {
	ch             publisher
	log            *zap.Logger
	queueName      string
	publishTimeout time.Duration
	confirms       chan amqp.Confirmation
	mu             sync.Mutex
}

// NewService opens a channel, declares the queue and enables publisher
// confirms.
func NewService(conn *amqp.Connection, log *zap.Logger, queueName string, publishTimeout time.Duration) (contracts.DeadLetterNotifier, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	)
	if err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return &Service{
		ch:             ch,
		log:            log,
		queueName:      queueName,
		publishTimeout: publishTimeout,
		confirms:       ch.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer)),
	}, nil
}

// Publish sends a persistent message and waits for the broker confirm of
// that message. Confirms left over from earlier publishes that gave up
// waiting are discarded on the way.
func (s *Service) Publish(ctx context.Context, notification models.DeadLetterNotification) error {
	s.log.Debug("DeadLetterQueue.Publish called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingQueueNameKey, s.queueName),
		zap.String(constvars.LoggingResourceIDKey, notification.ID),
	)

	body, err := json.Marshal(notification)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	if s.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    notification.Timestamp,
	}

	deliveryTag := s.ch.GetNextPublishSeqNo()
	if err := s.ch.PublishWithContext(ctx, "", s.queueName, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, s.queueName)
	}

	for {
		select {
		case confirmed, ok := <-s.confirms:
			if !ok {
				return exceptions.ErrRabbitMQPublishMessage(errConfirmClosed, s.queueName)
			}
			if confirmed.DeliveryTag < deliveryTag {
				s.log.Debug("DeadLetterQueue.Publish stale confirm discarded",
					zap.String(constvars.LoggingQueueNameKey, s.queueName),
					zap.Uint64(constvars.LoggingDeliveryTagKey, confirmed.DeliveryTag),
					zap.Bool(constvars.LoggingAckKey, confirmed.Ack),
				)
				continue
			}
			if !confirmed.Ack {
				return exceptions.ErrRabbitMQPublishMessage(errNotConfirmed, s.queueName)
			}
			return nil
		case <-ctx.Done():
			return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), s.queueName)
		}
	}
}
