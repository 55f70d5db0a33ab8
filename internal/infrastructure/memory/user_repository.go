package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/user-api/internal/domain/entity"
	"github.com/oksasatya/user-api/internal/domain/repository"
)

// firstUserID mirrors the start value of the postgres id sequence.
const firstUserID entity.UserID = 10

// UserRepository keeps users in process memory.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[entity.UserID]entity.User
	nextID entity.UserID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[entity.UserID]entity.User), nextID: firstUserID}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id entity.UserID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id entity.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) Exists(_ context.Context, id entity.UserID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *UserRepository) List(_ context.Context) ([]entity.User, error) {
	return r.filter(entity.UserCriteria{}), nil
}

func (r *UserRepository) FindByExample(_ context.Context, c entity.UserCriteria) ([]entity.User, error) {
	return r.filter(c), nil
}

// filter returns matches ordered by id, like the postgres implementation.
func (r *UserRepository) filter(c entity.UserCriteria) []entity.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		if c.Matches(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var _ repository.UserRepository = (*UserRepository)(nil)
