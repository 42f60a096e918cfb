package repository

import (
	"context"
	"database/sql"
	"errors"

	"storefront-service/internal/apperr"
	"storefront-service/internal/entity"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db}
}

// GetUserByID never selects the password column.
func (r *UserRepository) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	user := &entity.User{}
	query := `SELECT id, first_name, last_name FROM users WHERE id = ?`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.FirstName, &user.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.NewPersistenceError("get user", err)
	}

	return user, nil
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]*entity.User, error) {
	var users []*entity.User

	query := `SELECT id, first_name, last_name FROM users`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.NewPersistenceError("list users", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user entity.User
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName); err != nil {
			return nil, apperr.NewPersistenceError("scan user", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.NewPersistenceError("list users", err)
	}

	return users, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `INSERT INTO users (first_name, last_name, password) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, user.FirstName, user.LastName, user.PasswordHash)
	if err != nil {
		return nil, apperr.NewPersistenceError("create user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.NewPersistenceError("create user", err)
	}

	user.ID = int(id)
	return user, nil
}

// GetUserByName is the authentication lookup and the one read that selects
// the password hash. Names are not unique; ties resolve to the oldest row.
func (r *UserRepository) GetUserByName(ctx context.Context, firstName, lastName string) (*entity.User, error) {
	user := &entity.User{}
	query := `SELECT id, first_name, last_name, password FROM users WHERE first_name = ? AND last_name = ? ORDER BY id LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, firstName, lastName).Scan(&user.ID, &user.FirstName, &user.LastName, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.NewPersistenceError("get user by name", err)
	}

	return user, nil
}

// DeleteUser removes the row and returns the deleted record. Orders and
// their line items go with it through the FK cascade.
func (r *UserRepository) DeleteUser(ctx context.Context, id int) (*entity.User, error) {
	user, err := r.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `DELETE FROM users WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return nil, apperr.NewPersistenceError("delete user", err)
	}

	return user, nil
}
