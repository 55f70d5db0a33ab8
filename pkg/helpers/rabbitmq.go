package helpers

import (
	"errors"
	"net/url"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DialRabbit connects to RabbitMQ with a bounded dial so startup cannot hang.
func DialRabbit(rawURL string, dialTimeout time.Duration) (*amqp.Connection, error) {
	clean, err := sanitizeAMQPURL(rawURL)
	if err != nil {
		return nil, err
	}
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	return amqp.DialConfig(clean, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
}

// DeadLetterQueue names the queue that receives messages rejected from queue.
func DeadLetterQueue(queue string) string { return queue + ".dead" }

// DeclareDurableQueue opens a channel on conn and makes sure queue and its
// dead-letter queue exist. Rejected messages are routed through the
// default exchange to DeadLetterQueue(queue).
func DeclareDurableQueue(conn *amqp.Connection, queue string) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	dead := DeadLetterQueue(queue)
	if _, err = ch.QueueDeclare(dead, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dead,
		},
	)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return ch, nil
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}
