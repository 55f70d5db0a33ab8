package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-api/internal/domain/entity"
)

// Envelope carries a DomainEvent to the bus together with transport headers.
type Envelope struct {
	MessageID string
	Headers   map[string]any
	Payload   entity.DomainEvent
}

func NewEnvelope(event entity.DomainEvent) Envelope {
	return Envelope{
		MessageID: uuid.NewString(),
		Headers: map[string]any{
			"event_type": string(event.Kind),
			"user_id":    int64(event.UserID),
		},
		Payload: event,
	}
}

// Channel is the bus a Publisher writes to. Send reports false when the bus
// did not accept the message within timeout, and an error when the
// transport itself failed.
type Channel interface {
	Send(ctx context.Context, env Envelope, timeout time.Duration) (bool, error)
}

// LogChannel stands in for the bus when messaging is disabled. It only logs.
type LogChannel struct {
	Logger *logrus.Logger
}

func (c LogChannel) Send(_ context.Context, env Envelope, _ time.Duration) (bool, error) {
	logger := c.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{
		"message_id": env.MessageID,
		"event":      env.Payload.String(),
	}).Info("[MQ-FALLBACK] message bus disabled, event logged only")
	return true, nil
}
