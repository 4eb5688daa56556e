package models

import "time"

// Project moderation states.
const (
	ProjectStatusPending  = "pending"
	ProjectStatusApproved = "approved"
	ProjectStatusRejected = "rejected"
)

// Project categories form a closed enum.
const (
	CategoryCouture      = "couture"
	CategoryPretAPorter  = "pret_a_porter"
	CategoryTextile      = "textile"
	CategoryAccessories  = "accessories"
	CategoryIllustration = "illustration"
	CategoryOther        = "other"
)

// KnownCategories lists the closed category enum in display order.
var KnownCategories = []string{
	CategoryCouture,
	CategoryPretAPorter,
	CategoryTextile,
	CategoryAccessories,
	CategoryIllustration,
	CategoryOther,
}

// Project is a student submission awaiting or having received moderation.
type Project struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Category        string         `gorm:"size:64;not null;index" json:"category"`
	Materials       string         `gorm:"type:text" json:"materials,omitempty"`
	Inspiration     string         `gorm:"type:text" json:"inspiration,omitempty"`
	Status          string         `gorm:"size:32;not null;default:pending;index" json:"status"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason,omitempty"`
	Views           int64          `gorm:"not null;default:0" json:"views"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	User            User           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Images          []ProjectImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	RejectedAt      *time.Time     `json:"rejected_at,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ProjectImage stores the hosted location of a single uploaded image.
type ProjectImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	AssetID   string    `gorm:"size:255;not null" json:"asset_id"`
	FileName  string    `gorm:"size:255" json:"file_name,omitempty"`
	SizeBytes int64     `json:"size_bytes"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// IsValidCategory reports whether the value is part of the category enum.
func IsValidCategory(value string) bool {
	for _, category := range KnownCategories {
		if category == value {
			return true
		}
	}
	return false
}
