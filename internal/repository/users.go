package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/event-registrations/internal/apperror"
	"github.com/Shivanand-hulikatti/event-registrations/internal/database"
	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
)

const userColumns = `id, name, email`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserRepository handles persistence for users.
type UserRepository struct {
	db *database.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. A taken email yields apperror.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, name, email string) (*model.User, error) {
	var user *model.User
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		var err error
		user, err = scanUser(q.QueryRow(ctx,
			`INSERT INTO users (name, email) VALUES ($1, $2)
			 RETURNING `+userColumns,
			name, email,
		))
		return err
	})
	if err != nil {
		return nil, translate("insert user", err)
	}
	return user, nil
}

// GetByID returns a single user or apperror.ErrUserNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user *model.User
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		var err error
		user, err = scanUser(q.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, translate("get user", err)
	}
	return user, nil
}

// List returns all users ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
		if err != nil {
			return err
		}
		users, err = collectUsers(rows)
		return err
	})
	if err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

// DeleteByID removes a user. Users with registrations cannot be deleted.
func (r *UserRepository) DeleteByID(ctx context.Context, id int64) error {
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperror.ErrUserNotFound
		}
		return nil
	})
	return translateDelete("delete user", err)
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
