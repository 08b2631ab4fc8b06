package store

import (
	"context"

	"github.com/google/uuid"
)

const createUser = `
INSERT INTO users (email, password_hash, name, role)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password_hash, name, role, created_at, updated_at
`

// CreateUserParams are the fields for a new staff account.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Name         string
	Role         string
}

func (s *Store) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := s.db.QueryRow(ctx, createUser, arg.Email, arg.PasswordHash, arg.Name, arg.Role)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUser = `
SELECT id, email, password_hash, name, role, created_at, updated_at
FROM users
WHERE id = $1
`

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	row := s.db.QueryRow(ctx, getUser, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const listUsers = `
SELECT id, email, password_hash, name, role, created_at, updated_at
FROM users
ORDER BY created_at
`

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const getUserByEmail = `
SELECT id, email, password_hash, name, role, created_at, updated_at
FROM users
WHERE email = $1
`

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRow(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
