package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-api/internal/domain/entity"
	repo "github.com/oksasatya/user-api/internal/domain/repository"
)

// UserIndex is the search-side copy of users.
type UserIndex interface {
	Put(ctx context.Context, u entity.User) error
	Remove(ctx context.Context, id entity.UserID) error
}

// SearchProjection applies user events to a UserIndex. Events only carry
// the id, so the current record is read back from the repository.
type SearchProjection struct {
	Repo   repo.UserRepository
	Index  UserIndex
	Logger *logrus.Logger
}

func NewSearchProjection(r repo.UserRepository, idx UserIndex, logger *logrus.Logger) *SearchProjection {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SearchProjection{Repo: r, Index: idx, Logger: logger}
}

func (p *SearchProjection) Handle(ctx context.Context, event entity.DomainEvent) error {
	switch event.Kind {
	case entity.EventUserCreated, entity.EventUserUpdated:
		u, err := p.Repo.GetByID(ctx, event.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			// deleted before this event was consumed
			return p.Index.Remove(ctx, event.UserID)
		}
		if err != nil {
			return fmt.Errorf("load user %d: %w", event.UserID, err)
		}
		return p.Index.Put(ctx, *u)
	case entity.EventUserDeleted:
		return p.Index.Remove(ctx, event.UserID)
	default:
		p.Logger.WithField("event", event.String()).Warn("unknown event type, skipping")
		return nil
	}
}
