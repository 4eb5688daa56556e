package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures auditable events triggered by students and administrators.
// Entries are append-only; the application never mutates or deletes them.
type ActivityLog struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ActorID     uint              `gorm:"not null;index:idx_activity_dedupe" json:"actor_id"`
	ActorRole   string            `gorm:"size:32;not null" json:"actor_role"`
	ActorName   string            `gorm:"size:255" json:"actor_name"`
	Action      string            `gorm:"size:64;not null;index:idx_activity_dedupe" json:"action"`
	Description string            `gorm:"size:512" json:"description"`
	EntityType  string            `gorm:"size:64" json:"entity_type,omitempty"`
	EntityID    *uint             `json:"entity_id,omitempty"`
	Method      string            `gorm:"size:16" json:"method,omitempty"`
	Route       string            `gorm:"size:255;index:idx_activity_dedupe" json:"route,omitempty"`
	StatusCode  int               `json:"status_code,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	IPAddress   string            `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent   string            `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}
