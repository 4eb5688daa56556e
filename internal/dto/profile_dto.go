package dto

import "time"

// ProfileRequest replaces a student's profile sub-record wholesale.
type ProfileRequest struct {
	Bio            string            `json:"bio" validate:"max=2000"`
	Skills         []string          `json:"skills" validate:"max=25,dive,max=64"`
	Specialization string            `json:"specialization" validate:"max=128"`
	Contact        string            `json:"contact" validate:"max=255"`
	SocialLinks    map[string]string `json:"social_links" validate:"max=10"`
}

// ProfileResponse returns the stored profile with its last-updated timestamp.
type ProfileResponse struct {
	Profile   map[string]interface{} `json:"profile"`
	UpdatedAt *time.Time             `json:"updated_at,omitempty"`
}
