package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Admin maps to the admins table.
type Admin struct {
	ID           int        `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	IsActive     bool       `json:"isActive"`
}

const uniqueViolation = "23505"

// GetActiveAdminByEmail returns the active admin with the given email, or
// ErrNotFound.
func (s *Store) GetActiveAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	query := `
		SELECT id, email, password_hash, created_at, last_login, is_active
		FROM admins
		WHERE email = $1 AND is_active = TRUE
	`
	a := &Admin{}
	var lastLogin sql.NullTime
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.CreatedAt,
		&lastLogin,
		&a.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin %q: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	a.LastLogin = nullableTime(lastLogin)
	return a, nil
}

// UpdateAdminLastLogin stamps the admin's last_login with the current time.
func (s *Store) UpdateAdminLastLogin(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, "UPDATE admins SET last_login = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to update admin last login: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("admin with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreateAdmin inserts an admin with an already hashed password. An existing
// email yields ErrDuplicate.
func (s *Store) CreateAdmin(ctx context.Context, email, passwordHash string) (*Admin, error) {
	query := `
		INSERT INTO admins (email, password_hash, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING id, email, password_hash, created_at, is_active
	`
	a := &Admin{}
	err := s.db.QueryRowContext(ctx, query, email, passwordHash).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.CreatedAt,
		&a.IsActive,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("admin %q: %w", email, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return a, nil
}
