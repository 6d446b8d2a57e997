package auth

import (
	"context"

	"harrys-team/backend/internal/datastore"
)

// AdminUser is the identity placed in tokens and returned by login.
type AdminUser struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"isActive"`
}

// AdminStore is the persistence the login flow needs. *datastore.Store
// implements it.
type AdminStore interface {
	GetActiveAdminByEmail(ctx context.Context, email string) (*datastore.Admin, error)
	UpdateAdminLastLogin(ctx context.Context, id int) error
	CreateAdmin(ctx context.Context, email, passwordHash string) (*datastore.Admin, error)
}

func adminUserFrom(a *datastore.Admin) AdminUser {
	return AdminUser{ID: a.ID, Email: a.Email, IsActive: a.IsActive}
}
