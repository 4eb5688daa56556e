package dto

import (
	"time"

	"github.com/noah-isme/folio-go-api/internal/models"
)

// ActivityFeedRequest pages over recent audit entries.
type ActivityFeedRequest struct {
	Page     int
	PageSize int
	Action   string
	ActorID  *uint
}

// ActivityResponse is the external representation of one audit entry.
type ActivityResponse struct {
	ID          uint                   `json:"id"`
	ActorID     uint                   `json:"actor_id"`
	ActorRole   string                 `json:"actor_role"`
	ActorName   string                 `json:"actor_name,omitempty"`
	Action      string                 `json:"action"`
	Description string                 `json:"description"`
	EntityType  string                 `json:"entity_type,omitempty"`
	EntityID    *uint                  `json:"entity_id,omitempty"`
	Method      string                 `json:"method,omitempty"`
	Route       string                 `json:"route,omitempty"`
	StatusCode  int                    `json:"status_code,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	IPAddress   string                 `json:"ip_address,omitempty"`
	UserAgent   string                 `json:"user_agent,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ActivityFeedResponse pages the audit trail for the admin feed.
type ActivityFeedResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse maps an audit entry to its external representation.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	response := ActivityResponse{
		ID:          entry.ID,
		ActorID:     entry.ActorID,
		ActorRole:   entry.ActorRole,
		ActorName:   entry.ActorName,
		Action:      entry.Action,
		Description: entry.Description,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Method:      entry.Method,
		Route:       entry.Route,
		StatusCode:  entry.StatusCode,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		CreatedAt:   entry.CreatedAt,
	}
	if entry.Metadata != nil {
		response.Metadata = map[string]interface{}(entry.Metadata)
	}
	return response
}
