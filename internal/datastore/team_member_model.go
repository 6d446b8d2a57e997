package datastore

import "time"

// SocialLinks is stored in team_members.social_links as a JSON object. Empty
// entries are left out.
type SocialLinks struct {
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Facebook string `json:"facebook,omitempty"`
}

// TeamMember maps to the team_members table.
type TeamMember struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Position    string      `json:"position"`
	Bio         string      `json:"bio"`
	PhotoURL    *string     `json:"photoUrl"`
	Email       *string     `json:"email"`
	Phone       *string     `json:"phone"`
	SocialLinks SocialLinks `json:"socialLinks"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// TeamMemberInput carries the writable columns. An empty PhotoURL on update
// keeps the stored photo.
type TeamMemberInput struct {
	Name        string
	Position    string
	Bio         string
	PhotoURL    string
	Email       *string
	Phone       *string
	SocialLinks SocialLinks
	IsActive    bool
}
