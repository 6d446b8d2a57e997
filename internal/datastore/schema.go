package datastore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		last_login TIMESTAMPTZ,
		is_active BOOLEAN DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS hero_images (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255),
		image_url TEXT NOT NULL,
		alt_text VARCHAR(255) NOT NULL,
		caption TEXT,
		position INTEGER DEFAULT 0,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		position VARCHAR(255) NOT NULL,
		bio TEXT,
		photo_url TEXT,
		email VARCHAR(255),
		phone VARCHAR(50),
		social_links JSONB,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		slug VARCHAR(255) UNIQUE NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		description TEXT,
		location VARCHAR(255),
		image_url TEXT,
		content TEXT,
		is_active BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS programs (
		id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		slug VARCHAR(255) UNIQUE NOT NULL,
		description TEXT,
		image_url TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS site_settings (
		id UUID PRIMARY KEY,
		site_title VARCHAR(255),
		site_description TEXT,
		contact_email VARCHAR(255),
		contact_phone VARCHAR(50),
		address TEXT,
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS contact_messages (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		subject VARCHAR(255),
		message TEXT NOT NULL,
		read_status BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_date ON events(date)`,
	`CREATE INDEX IF NOT EXISTS idx_events_is_active ON events(is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_hero_images_position ON hero_images(position)`,
	`CREATE INDEX IF NOT EXISTS idx_hero_images_is_active ON hero_images(is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_contact_messages_read_status ON contact_messages(read_status)`,
	`CREATE INDEX IF NOT EXISTS idx_contact_messages_created_at ON contact_messages(created_at)`,
}

// Migrate creates the tables and indexes the service needs. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i+1, err)
		}
	}
	s.logger.Info("database schema initialized", zap.Int("statements", len(schemaStatements)))
	return nil
}
