package datastore

import "time"

// HeroImage maps to the hero_images table.
type HeroImage struct {
	ID        int       `json:"id"`
	Title     *string   `json:"title"`
	ImageURL  string    `json:"imageUrl"`
	AltText   string    `json:"altText"`
	Caption   *string   `json:"caption"`
	Position  int       `json:"position"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HeroImageInput carries the writable columns. An empty ImageURL on update
// keeps the stored URL.
type HeroImageInput struct {
	Title    *string
	ImageURL string
	AltText  string
	Caption  *string
	Position int
	IsActive bool
}
