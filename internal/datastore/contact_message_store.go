package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const contactMessageColumns = `id, name, email, subject, message, read_status, created_at, updated_at`

func scanContactMessage(row rowScanner) (*ContactMessage, error) {
	m := &ContactMessage{}
	var subject sql.NullString
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &subject, &m.Message, &m.Read, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Subject = nullableString(subject)
	return m, nil
}

// CreateContactMessage stores a contact form submission as unread.
func (s *Store) CreateContactMessage(ctx context.Context, in ContactMessageInput) (*ContactMessage, error) {
	var subject *string
	if in.Subject != "" {
		subject = &in.Subject
	}
	query := `
		INSERT INTO contact_messages (id, name, email, subject, message, read_status)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING ` + contactMessageColumns
	m, err := scanContactMessage(s.db.QueryRowContext(ctx, query, uuid.New().String(), in.Name, in.Email, subject, in.Message))
	if err != nil {
		return nil, fmt.Errorf("failed to create contact message: %w", err)
	}
	return m, nil
}

// ListContactMessages lists messages newest first, optionally only unread ones.
func (s *Store) ListContactMessages(ctx context.Context, unreadOnly bool) ([]*ContactMessage, error) {
	query := "SELECT " + contactMessageColumns + " FROM contact_messages"
	if unreadOnly {
		query += " WHERE read_status = FALSE"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	messages := []*ContactMessage{}
	for rows.Next() {
		m, err := scanContactMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for contact messages: %w", err)
	}
	return messages, nil
}

// MarkContactMessageRead flags a message as read and returns it.
func (s *Store) MarkContactMessageRead(ctx context.Context, id string) (*ContactMessage, error) {
	query := `
		UPDATE contact_messages SET read_status = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + contactMessageColumns
	m, err := scanContactMessage(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to mark contact message read: %w", notFound(err, "contact message", id))
	}
	return m, nil
}

const siteSettingsColumns = `id, site_title, site_description, contact_email, contact_phone, address, updated_at`

func scanSiteSettings(row rowScanner) (*SiteSettings, error) {
	st := &SiteSettings{}
	var title, description, email, phone, address sql.NullString
	if err := row.Scan(&st.ID, &title, &description, &email, &phone, &address, &st.UpdatedAt); err != nil {
		return nil, err
	}
	st.SiteTitle = nullableString(title)
	st.SiteDescription = nullableString(description)
	st.ContactEmail = nullableString(email)
	st.ContactPhone = nullableString(phone)
	st.Address = nullableString(address)
	return st, nil
}

// GetSiteSettings returns the most recently updated settings row.
func (s *Store) GetSiteSettings(ctx context.Context) (*SiteSettings, error) {
	query := "SELECT " + siteSettingsColumns + " FROM site_settings ORDER BY updated_at DESC LIMIT 1"
	st, err := scanSiteSettings(s.db.QueryRowContext(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get site settings: %w", notFound(err, "site settings", "-"))
	}
	return st, nil
}

// UpdateSiteSettings applies a partial update to the current settings row,
// creating it when the table is empty.
func (s *Store) UpdateSiteSettings(ctx context.Context, patch SiteSettingsPatch) (*SiteSettings, error) {
	query := `
		WITH current AS (
			SELECT id FROM site_settings ORDER BY updated_at DESC LIMIT 1
		), updated AS (
			UPDATE site_settings s
			SET site_title = COALESCE($2::text, s.site_title),
			    site_description = COALESCE($3::text, s.site_description),
			    contact_email = COALESCE($4::text, s.contact_email),
			    contact_phone = COALESCE($5::text, s.contact_phone),
			    address = COALESCE($6::text, s.address),
			    updated_at = NOW()
			FROM current
			WHERE s.id = current.id
			RETURNING s.id, s.site_title, s.site_description, s.contact_email, s.contact_phone, s.address, s.updated_at
		), inserted AS (
			INSERT INTO site_settings (id, site_title, site_description, contact_email, contact_phone, address)
			SELECT $1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text
			WHERE NOT EXISTS (SELECT 1 FROM current)
			RETURNING ` + siteSettingsColumns + `
		)
		SELECT ` + siteSettingsColumns + ` FROM updated
		UNION ALL
		SELECT ` + siteSettingsColumns + ` FROM inserted
	`
	st, err := scanSiteSettings(s.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		patch.SiteTitle,
		patch.SiteDescription,
		patch.ContactEmail,
		patch.ContactPhone,
		patch.Address,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update site settings: %w", err)
	}
	return st, nil
}
