package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/user-api/internal/domain/entity"
	"github.com/oksasatya/user-api/internal/domain/repository"
)

const selectUsers = `SELECT id, first_name, email, password FROM users`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts u and sets u.ID from the users id sequence.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (first_name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id
	`, u.FirstName, u.Email, u.Password)

	return row.Scan(&u.ID)
}

func (r *UserRepository) GetByID(ctx context.Context, id entity.UserID) (*entity.User, error) {
	u := &entity.User{}

	row := r.pool.QueryRow(ctx, selectUsers+` WHERE id = $1`, int64(id))
	if err := row.Scan(&u.ID, &u.FirstName, &u.Email, &u.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET first_name = $1, email = $2, password = $3
		WHERE id = $4
	`, u.FirstName, u.Email, u.Password, int64(u.ID))
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id entity.UserID) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, int64(id))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Exists(ctx context.Context, id entity.UserID) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, int64(id)).Scan(&found)
	return found, err
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, selectUsers+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// FindByExample matches on the non-nil criteria; a nil criterion is passed
// as NULL and disables its predicate.
func (r *UserRepository) FindByExample(ctx context.Context, c entity.UserCriteria) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, selectUsers+`
		WHERE ($1::text IS NULL OR first_name = $1)
		  AND ($2::text IS NULL OR email = $2)
		ORDER BY id
	`, c.FirstName, c.Email)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]entity.User, error) {
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.User, error) {
		var u entity.User
		err := row.Scan(&u.ID, &u.FirstName, &u.Email, &u.Password)
		return u, err
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
