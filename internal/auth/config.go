package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"harrys-team/backend/internal/datastore"
)

// SeedAdmin creates the bootstrap admin from the configured credentials. It is
// a no-op when either value is empty or the admin already exists; after the
// first run the stored hash is authoritative and the env password is ignored.
func SeedAdmin(ctx context.Context, store AdminStore, logger *zap.Logger, email, password string) error {
	if email == "" || password == "" {
		logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin, err := store.CreateAdmin(ctx, email, string(hash))
	if errors.Is(err, datastore.ErrDuplicate) {
		logger.Info("admin already exists, seeding skipped", zap.String("email", email))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	logger.Info("seeded admin", zap.Int("admin_id", admin.ID), zap.String("email", admin.Email))
	return nil
}
