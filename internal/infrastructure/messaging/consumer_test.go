package messaging

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/user-api/internal/domain/entity"
)

type recordingAck struct {
	acked   bool
	nacked  bool
	requeue bool
	at      time.Time
}

func (r *recordingAck) Ack(bool) error { r.acked = true; return nil }

func (r *recordingAck) Nack(_, requeue bool) error {
	r.nacked, r.requeue, r.at = true, requeue, time.Now()
	return nil
}

const createdBody = `{"timestamp":1,"user_id":10,"type":"USER_CREATED"}`

func newTestConsumer(handle EventHandler, delay time.Duration) *Consumer {
	l := logrus.New()
	l.SetOutput(io.Discard)
	c := NewConsumer(handle, l)
	c.RetryDelay = delay
	return c
}

func failing(context.Context, entity.DomainEvent) error { return errors.New("index unavailable") }

func TestConsumer_Settle(t *testing.T) {
	ctx := context.Background()

	t.Run("handled event is acked", func(t *testing.T) {
		var got entity.DomainEvent
		c := newTestConsumer(func(_ context.Context, e entity.DomainEvent) error {
			got = e
			return nil
		}, 0)
		ack := &recordingAck{}
		c.settle(ctx, []byte(createdBody), false, ack)

		assert.True(t, ack.acked)
		assert.Equal(t, entity.DomainEvent{Timestamp: 1, UserID: 10, Kind: entity.EventUserCreated}, got)
	})

	t.Run("first failure is requeued after the retry delay", func(t *testing.T) {
		c := newTestConsumer(failing, 50*time.Millisecond)
		ack := &recordingAck{}
		start := time.Now()
		c.settle(ctx, []byte(createdBody), false, ack)

		assert.True(t, ack.nacked)
		assert.True(t, ack.requeue)
		assert.GreaterOrEqual(t, ack.at.Sub(start), 50*time.Millisecond)
	})

	t.Run("failed redelivery is dead-lettered at once", func(t *testing.T) {
		c := newTestConsumer(failing, time.Hour)
		ack := &recordingAck{}
		c.settle(ctx, []byte(createdBody), true, ack)

		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})

	t.Run("shutdown cuts the retry delay short", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		c := newTestConsumer(failing, time.Hour)
		ack := &recordingAck{}
		c.settle(cctx, []byte(createdBody), false, ack)

		assert.True(t, ack.nacked)
		assert.True(t, ack.requeue)
	})

	for name, body := range map[string]string{
		"not json":     `USER_CREATED:10`,
		"missing type": `{"timestamp":1,"user_id":10}`,
	} {
		t.Run(name+" is dropped", func(t *testing.T) {
			called := false
			c := newTestConsumer(func(context.Context, entity.DomainEvent) error {
				called = true
				return nil
			}, 0)
			ack := &recordingAck{}
			c.settle(ctx, []byte(body), false, ack)

			assert.False(t, called)
			assert.True(t, ack.nacked)
			assert.False(t, ack.requeue)
		})
	}
}

func TestConsumer_Run(t *testing.T) {
	c := newTestConsumer(func(context.Context, entity.DomainEvent) error { return nil }, 0)

	t.Run("closed delivery channel is reported", func(t *testing.T) {
		deliveries := make(chan amqp.Delivery)
		close(deliveries)
		assert.ErrorIs(t, c.Run(context.Background(), deliveries), ErrDeliveriesClosed)
	})

	t.Run("shutdown returns nil", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, c.Run(ctx, make(chan amqp.Delivery)))
	})
}
