package datastore

import (
	"context"
	"database/sql"
	"fmt"
)

const eventColumns = `id, title, slug, date, description, location, image_url, content, is_active, created_at, updated_at`

func scanEvent(row rowScanner) (*Event, error) {
	e := &Event{}
	var description, location, imageURL, content sql.NullString
	if err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Slug,
		&e.Date,
		&description,
		&location,
		&imageURL,
		&content,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Description = nullableString(description)
	e.Location = nullableString(location)
	e.ImageURL = nullableString(imageURL)
	e.Content = nullableString(content)
	return e, nil
}

// ListEvents lists all events, most recent date first.
func (s *Store) ListEvents(ctx context.Context) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+eventColumns+" FROM events ORDER BY date DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for events: %w", err)
	}
	return events, nil
}

// GetActiveEvent returns the latest active event, or ErrNotFound when no
// event is active.
func (s *Store) GetActiveEvent(ctx context.Context) (*Event, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE is_active = TRUE ORDER BY date DESC LIMIT 1"
	e, err := scanEvent(s.db.QueryRowContext(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get active event: %w", notFound(err, "active event", "-"))
	}
	return e, nil
}

// GetEvent retrieves an event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (*Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", notFound(err, "event", id))
	}
	return e, nil
}

const programColumns = `id, title, slug, description, image_url, created_at, updated_at`

func scanProgram(row rowScanner) (*Program, error) {
	p := &Program{}
	var description, imageURL sql.NullString
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &description, &imageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Description = nullableString(description)
	p.ImageURL = nullableString(imageURL)
	return p, nil
}

// ListPrograms lists programs, newest first.
func (s *Store) ListPrograms(ctx context.Context) ([]*Program, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+programColumns+" FROM programs ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	programs := []*Program{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan program row: %w", err)
		}
		programs = append(programs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for programs: %w", err)
	}
	return programs, nil
}

// GetProgram retrieves a program by ID.
func (s *Store) GetProgram(ctx context.Context, id string) (*Program, error) {
	p, err := scanProgram(s.db.QueryRowContext(ctx, "SELECT "+programColumns+" FROM programs WHERE id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("failed to get program: %w", notFound(err, "program", id))
	}
	return p, nil
}
