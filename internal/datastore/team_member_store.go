package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const teamMemberColumns = `id, name, position, bio, photo_url, email, phone, social_links, is_active, created_at, updated_at`

func scanTeamMember(row rowScanner) (*TeamMember, error) {
	m := &TeamMember{}
	var bio, photoURL, email, phone sql.NullString
	var socialLinks []byte
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Position,
		&bio,
		&photoURL,
		&email,
		&phone,
		&socialLinks,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.Bio = bio.String
	m.PhotoURL = nullableString(photoURL)
	m.Email = nullableString(email)
	m.Phone = nullableString(phone)
	if len(socialLinks) > 0 {
		if err := json.Unmarshal(socialLinks, &m.SocialLinks); err != nil {
			return nil, fmt.Errorf("invalid social_links for team member %d: %w", m.ID, err)
		}
	}
	return m, nil
}

// encodeSocialLinks renders the JSONB parameter. lib/pq sends []byte as
// bytea, so the value is passed as a string.
func encodeSocialLinks(links SocialLinks) (string, error) {
	b, err := json.Marshal(links)
	if err != nil {
		return "", fmt.Errorf("failed to encode social links: %w", err)
	}
	return string(b), nil
}

// ListTeamMembers lists team members ordered by name. With activeOnly set,
// inactive members are left out.
func (s *Store) ListTeamMembers(ctx context.Context, activeOnly bool) ([]*TeamMember, error) {
	query := "SELECT " + teamMemberColumns + " FROM team_members"
	if activeOnly {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	members := []*TeamMember{}
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team member row: %w", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for team members: %w", err)
	}
	return members, nil
}

// GetTeamMember retrieves a team member by ID.
func (s *Store) GetTeamMember(ctx context.Context, id int) (*TeamMember, error) {
	query := "SELECT " + teamMemberColumns + " FROM team_members WHERE id = $1"
	m, err := scanTeamMember(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get team member: %w", notFound(err, "team member", id))
	}
	return m, nil
}

// CreateTeamMember inserts a team member and returns the stored row.
func (s *Store) CreateTeamMember(ctx context.Context, in TeamMemberInput) (*TeamMember, error) {
	links, err := encodeSocialLinks(in.SocialLinks)
	if err != nil {
		return nil, err
	}
	var photoURL *string
	if in.PhotoURL != "" {
		photoURL = &in.PhotoURL
	}

	query := `
		INSERT INTO team_members (name, position, bio, photo_url, email, phone, social_links, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + teamMemberColumns
	m, err := scanTeamMember(s.db.QueryRowContext(ctx, query,
		in.Name,
		in.Position,
		in.Bio,
		photoURL,
		in.Email,
		in.Phone,
		links,
		in.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create team member: %w", err)
	}
	return m, nil
}

// UpdateTeamMember overwrites a team member. The photo URL is only replaced
// when in.PhotoURL is non-empty.
func (s *Store) UpdateTeamMember(ctx context.Context, id int, in TeamMemberInput) (*TeamMember, error) {
	links, err := encodeSocialLinks(in.SocialLinks)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE team_members
		SET name = $1, position = $2, bio = $3, photo_url = COALESCE(NULLIF($4, ''), photo_url),
		    email = $5, phone = $6, social_links = $7, is_active = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING ` + teamMemberColumns
	m, err := scanTeamMember(s.db.QueryRowContext(ctx, query,
		in.Name,
		in.Position,
		in.Bio,
		in.PhotoURL,
		in.Email,
		in.Phone,
		links,
		in.IsActive,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update team member: %w", notFound(err, "team member", id))
	}
	return m, nil
}

// DeleteTeamMember deletes a team member and returns the URL of its photo,
// empty when it had none.
func (s *Store) DeleteTeamMember(ctx context.Context, id int) (string, error) {
	var photoURL sql.NullString
	err := s.db.QueryRowContext(ctx, "DELETE FROM team_members WHERE id = $1 RETURNING photo_url", id).Scan(&photoURL)
	if err != nil {
		return "", fmt.Errorf("failed to delete team member: %w", notFound(err, "team member", id))
	}
	return photoURL.String, nil
}
