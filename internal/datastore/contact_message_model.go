package datastore

import "time"

// ContactMessage maps to the contact_messages table.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   *string   `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ContactMessageInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// SiteSettings maps to the single-row site_settings table.
type SiteSettings struct {
	ID              string    `json:"id"`
	SiteTitle       *string   `json:"siteTitle"`
	SiteDescription *string   `json:"siteDescription"`
	ContactEmail    *string   `json:"contactEmail"`
	ContactPhone    *string   `json:"contactPhone"`
	Address         *string   `json:"address"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SiteSettingsPatch holds a partial update; nil fields keep their value.
type SiteSettingsPatch struct {
	SiteTitle       *string `json:"siteTitle"`
	SiteDescription *string `json:"siteDescription"`
	ContactEmail    *string `json:"contactEmail"`
	ContactPhone    *string `json:"contactPhone"`
	Address         *string `json:"address"`
}
