package messaging

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-api/internal/domain/apperror"
	"github.com/oksasatya/user-api/internal/domain/entity"
)

type fakeChannel struct {
	ok      bool
	err     error
	panicV  any
	sent    []Envelope
	timeout time.Duration
}

func (f *fakeChannel) Send(_ context.Context, env Envelope, timeout time.Duration) (bool, error) {
	f.sent = append(f.sent, env)
	f.timeout = timeout
	if f.panicV != nil {
		panic(f.panicV)
	}
	return f.ok, f.err
}

func newTestPublisher(ch Channel) *Publisher {
	l := logrus.New()
	l.SetOutput(io.Discard)
	p := NewPublisher(ch, 0, l)
	p.Now = func() time.Time { return time.UnixMilli(1_700_000_000_123) }
	return p
}

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted send", func(t *testing.T) {
		ch := &fakeChannel{ok: true}
		p := newTestPublisher(ch)

		require.NoError(t, p.Publish(ctx, entity.EventUserCreated, 10))
		require.Len(t, ch.sent, 1)
		assert.Equal(t, entity.DomainEvent{Timestamp: 1_700_000_000_123, UserID: 10, Kind: entity.EventUserCreated}, ch.sent[0].Payload)
		assert.NotEmpty(t, ch.sent[0].MessageID)
		assert.Equal(t, "USER_CREATED", ch.sent[0].Headers["event_type"])
		assert.Equal(t, DefaultPublishTimeout, ch.timeout)
	})

	t.Run("refused send", func(t *testing.T) {
		p := newTestPublisher(&fakeChannel{ok: false})

		err := p.Publish(ctx, entity.EventUserUpdated, 11)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrPublishFailure)

		var perr *apperror.PublishError
		require.ErrorAs(t, err, &perr)
		assert.Nil(t, perr.Cause)
		assert.Equal(t, entity.EventUserUpdated, perr.Event.Kind)
		assert.Contains(t, err.Error(), "userId=11")
	})

	t.Run("transport error", func(t *testing.T) {
		cause := errors.New("channel closed")
		p := newTestPublisher(&fakeChannel{err: cause})

		err := p.Publish(ctx, entity.EventUserDeleted, 12)
		assert.ErrorIs(t, err, apperror.ErrPublishFailure)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("panic in channel", func(t *testing.T) {
		p := newTestPublisher(&fakeChannel{panicV: "broker exploded"})

		var err error
		assert.NotPanics(t, func() { err = p.Publish(ctx, entity.EventUserCreated, 13) })
		assert.ErrorIs(t, err, apperror.ErrPublishFailure)
		assert.Contains(t, err.Error(), "broker exploded")
	})
}

func TestLogChannel_AlwaysAccepts(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	ok, err := LogChannel{Logger: l}.Send(context.Background(), NewEnvelope(entity.DomainEvent{UserID: 1, Kind: entity.EventUserCreated}), time.Second)
	assert.NoError(t, err)
	assert.True(t, ok)
}
