package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"chatspace/internal/apperr"
	"chatspace/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id`
	err := s.pool.QueryRow(ctx, query, u.Username, u.Email, u.PasswordHash).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	query := `SELECT id, username, email, password_hash FROM users WHERE email = $1`
	err := s.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	query := `SELECT id, username, email, password_hash FROM users WHERE id::text = $1`
	err := s.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, excludeID string) ([]models.User, error) {
	query := `SELECT id, username, email FROM users WHERE id::text <> $1 ORDER BY username`
	rows, err := s.pool.Query(ctx, query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UsersByID(ctx context.Context, ids []string) ([]models.User, error) {
	query := `SELECT id, username, email FROM users WHERE id::text = ANY($1)`
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("users by id: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
