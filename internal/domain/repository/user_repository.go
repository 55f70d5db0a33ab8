package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-api/internal/domain/entity"
)

// ErrNotFound is returned by implementations when the requested user does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user-related database operations.
// Implementations assign ids on Create and must keep them unique under concurrent use.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id entity.UserID) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id entity.UserID) error
	Exists(ctx context.Context, id entity.UserID) (bool, error)
	List(ctx context.Context) ([]entity.User, error)
	FindByExample(ctx context.Context, c entity.UserCriteria) ([]entity.User, error)
}
