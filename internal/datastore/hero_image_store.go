package datastore

import (
	"context"
	"database/sql"
	"fmt"
)

const heroImageColumns = `id, title, image_url, alt_text, caption, position, is_active, created_at, updated_at`

func scanHeroImage(row rowScanner) (*HeroImage, error) {
	h := &HeroImage{}
	var title, caption sql.NullString
	if err := row.Scan(
		&h.ID,
		&title,
		&h.ImageURL,
		&h.AltText,
		&caption,
		&h.Position,
		&h.IsActive,
		&h.CreatedAt,
		&h.UpdatedAt,
	); err != nil {
		return nil, err
	}
	h.Title = nullableString(title)
	h.Caption = nullableString(caption)
	return h, nil
}

// ListHeroImages lists hero images ordered by position. With activeOnly set,
// inactive images are left out.
func (s *Store) ListHeroImages(ctx context.Context, activeOnly bool) ([]*HeroImage, error) {
	query := "SELECT " + heroImageColumns + " FROM hero_images"
	if activeOnly {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY position ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hero images: %w", err)
	}
	defer rows.Close()

	images := []*HeroImage{}
	for rows.Next() {
		h, err := scanHeroImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hero image row: %w", err)
		}
		images = append(images, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for hero images: %w", err)
	}
	return images, nil
}

// GetHeroImage retrieves a hero image by ID.
func (s *Store) GetHeroImage(ctx context.Context, id int) (*HeroImage, error) {
	query := "SELECT " + heroImageColumns + " FROM hero_images WHERE id = $1"
	h, err := scanHeroImage(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get hero image: %w", notFound(err, "hero image", id))
	}
	return h, nil
}

// CreateHeroImage inserts a hero image and returns the stored row.
func (s *Store) CreateHeroImage(ctx context.Context, in HeroImageInput) (*HeroImage, error) {
	query := `
		INSERT INTO hero_images (title, image_url, alt_text, caption, position, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + heroImageColumns
	h, err := scanHeroImage(s.db.QueryRowContext(ctx, query,
		in.Title,
		in.ImageURL,
		in.AltText,
		in.Caption,
		in.Position,
		in.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create hero image: %w", err)
	}
	return h, nil
}

// UpdateHeroImage overwrites a hero image. The image URL is only replaced
// when in.ImageURL is non-empty.
func (s *Store) UpdateHeroImage(ctx context.Context, id int, in HeroImageInput) (*HeroImage, error) {
	query := `
		UPDATE hero_images
		SET title = $1, image_url = COALESCE(NULLIF($2, ''), image_url), alt_text = $3, caption = $4,
		    position = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + heroImageColumns
	h, err := scanHeroImage(s.db.QueryRowContext(ctx, query,
		in.Title,
		in.ImageURL,
		in.AltText,
		in.Caption,
		in.Position,
		in.IsActive,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update hero image: %w", notFound(err, "hero image", id))
	}
	return h, nil
}

// DeleteHeroImage deletes a hero image and returns the URL of its file.
func (s *Store) DeleteHeroImage(ctx context.Context, id int) (string, error) {
	var imageURL string
	err := s.db.QueryRowContext(ctx, "DELETE FROM hero_images WHERE id = $1 RETURNING image_url", id).Scan(&imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to delete hero image: %w", notFound(err, "hero image", id))
	}
	return imageURL, nil
}
