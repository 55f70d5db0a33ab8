package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/user-api/pkg/helpers"
)

// RabbitChannel publishes envelopes to a durable queue on the default
// exchange and waits for the broker's publisher confirm.
type RabbitChannel struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func NewRabbitChannel(url, queue string, dialTimeout time.Duration) (*RabbitChannel, error) {
	conn, err := helpers.DialRabbit(url, dialTimeout)
	if err != nil {
		return nil, err
	}
	ch, err := helpers.DeclareDurableQueue(conn, queue)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitChannel{conn: conn, ch: ch, Queue: queue}, nil
}

func (c *RabbitChannel) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Send returns false when the broker nacks the message or does not confirm it before timeout.
func (c *RabbitChannel) Send(ctx context.Context, env Envelope, timeout time.Duration) (bool, error) {
	body, err := json.Marshal(env.Payload)
	if err != nil {
		return false, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conf, err := c.ch.PublishWithDeferredConfirmWithContext(ctx,
		"",      // default exchange
		c.Queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.MessageID,
			Type:         string(env.Payload.Kind),
			Headers:      amqp.Table(env.Headers),
			Timestamp:    time.UnixMilli(env.Payload.Timestamp).UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return false, err
	}
	if conf == nil {
		return true, nil
	}

	acked, err := conf.WaitContext(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, nil
		}
		return false, err
	}
	return acked, nil
}
