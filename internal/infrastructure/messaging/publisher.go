package messaging

import (
	"context"
	"expvar"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-api/internal/domain/apperror"
	"github.com/oksasatya/user-api/internal/domain/entity"
)

// DefaultPublishTimeout bounds how long Publish waits for the bus.
const DefaultPublishTimeout = 2 * time.Second

var (
	eventsPublished = expvar.NewInt("events_published")
	eventsFailed    = expvar.NewInt("events_failed")
)

// Publisher turns a completed mutation into a DomainEvent and sends it once.
type Publisher struct {
	Channel Channel
	Timeout time.Duration
	Now     func() time.Time
	Logger  *logrus.Logger
}

func NewPublisher(ch Channel, timeout time.Duration, logger *logrus.Logger) *Publisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Publisher{Channel: ch, Timeout: timeout, Now: time.Now, Logger: logger}
}

// Publish sends a kind event for userID. A refused send, a transport error
// and a panic inside the channel all come back as *apperror.PublishError;
// logging the failure is left to the caller.
func (p *Publisher) Publish(ctx context.Context, kind entity.EventKind, userID entity.UserID) (err error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	event := entity.NewDomainEvent(kind, userID, now())
	env := NewEnvelope(event)

	defer func() {
		if r := recover(); r != nil {
			err = p.fail(event, fmt.Errorf("message bus fault: %v", r))
		}
	}()

	p.Logger.WithField("event", event.String()).Debug("sending message to message bus")
	ok, sendErr := p.Channel.Send(ctx, env, p.Timeout)
	if sendErr != nil {
		return p.fail(event, sendErr)
	}
	if !ok {
		return p.fail(event, nil)
	}
	eventsPublished.Add(1)
	return nil
}

func (p *Publisher) fail(event entity.DomainEvent, cause error) error {
	eventsFailed.Add(1)
	return &apperror.PublishError{Event: event, Cause: cause}
}
