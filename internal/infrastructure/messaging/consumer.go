package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-api/internal/domain/entity"
)

// DefaultRetryDelay is how long a failed delivery waits before it is requeued.
const DefaultRetryDelay = 5 * time.Second

// ErrDeliveriesClosed is returned by Run when the broker closes the delivery channel.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// EventHandler processes one decoded event.
type EventHandler func(ctx context.Context, event entity.DomainEvent) error

// Acknowledger is the subset of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Consumer settles deliveries from one queue. A failed event is requeued
// once after RetryDelay; a failed redelivery is nacked without requeue so
// the broker moves it to the dead-letter queue.
type Consumer struct {
	Handle     EventHandler
	RetryDelay time.Duration
	Logger     *logrus.Logger
}

func NewConsumer(handle EventHandler, logger *logrus.Logger) *Consumer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Consumer{Handle: handle, RetryDelay: DefaultRetryDelay, Logger: logger}
}

// Run reads deliveries until ctx is done (nil) or the channel closes (ErrDeliveriesClosed).
func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.settle(ctx, msg.Body, msg.Redelivered, &msg)
		}
	}
}

func (c *Consumer) settle(ctx context.Context, body []byte, redelivered bool, ack Acknowledger) {
	var event entity.DomainEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Kind == "" {
		c.Logger.WithField("body", string(body)).Warn("bad message, dead-lettering")
		_ = ack.Nack(false, false)
		return
	}

	err := c.Handle(ctx, event)
	if err == nil {
		_ = ack.Ack(false)
		return
	}

	log := c.Logger.WithError(err).WithField("event", event.String())
	if redelivered {
		log.Error("event handling failed again, dead-lettering")
		_ = ack.Nack(false, false)
		return
	}
	log.Warn("event handling failed, requeueing after delay")
	if c.RetryDelay > 0 {
		t := time.NewTimer(c.RetryDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}
	_ = ack.Nack(false, true)
}
