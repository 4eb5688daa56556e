package dto

import (
	"time"

	"github.com/noah-isme/folio-go-api/internal/models"
)

// ProjectCreateRequest carries the multipart text fields of a submission.
type ProjectCreateRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=255"`
	Description string `json:"description" form:"description" validate:"required,max=5000"`
	Category    string `json:"category" form:"category" validate:"required"`
	Materials   string `json:"materials" form:"materials" validate:"max=2000"`
	Inspiration string `json:"inspiration" form:"inspiration" validate:"max=2000"`
}

// ProjectUpdateRequest mutates the text fields of an existing submission.
type ProjectUpdateRequest struct {
	Title       *string `json:"title" form:"title" validate:"omitempty,max=255"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category" form:"category"`
	Materials   *string `json:"materials" form:"materials" validate:"omitempty,max=2000"`
	Inspiration *string `json:"inspiration" form:"inspiration" validate:"omitempty,max=2000"`
}

// ProjectModerationRequest approves or rejects a pending submission.
type ProjectModerationRequest struct {
	ProjectID uint   `json:"projectId" validate:"required"`
	Reason    string `json:"reason" validate:"max=1000"`
}

// ProjectImageResponse describes one hosted image.
type ProjectImageResponse struct {
	URL       string `json:"url"`
	AssetID   string `json:"asset_id"`
	FileName  string `json:"file_name,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
	Position  int    `json:"position"`
}

// ProjectResponse is the external representation of a submission.
type ProjectResponse struct {
	ID              uint                   `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Category        string                 `json:"category"`
	Materials       string                 `json:"materials,omitempty"`
	Inspiration     string                 `json:"inspiration,omitempty"`
	Status          string                 `json:"status"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	Views           int64                  `json:"views"`
	OwnerID         uint                   `json:"owner_id"`
	OwnerName       string                 `json:"owner_name,omitempty"`
	Images          []ProjectImageResponse `json:"images"`
	ApprovedAt      *time.Time             `json:"approved_at,omitempty"`
	RejectedAt      *time.Time             `json:"rejected_at,omitempty"`
	ReviewedAt      *time.Time             `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// ProjectListResponse pages over submissions.
type ProjectListResponse struct {
	Items      []ProjectResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// GalleryRequest filters the public gallery.
type GalleryRequest struct {
	Category string
	Search   string
	Page     int
	PageSize int
}

// CategoryCount pairs a category with its approved project count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// NewProjectResponse maps a project model to its external representation.
func NewProjectResponse(project models.Project) ProjectResponse {
	images := make([]ProjectImageResponse, 0, len(project.Images))
	for _, image := range project.Images {
		images = append(images, ProjectImageResponse{
			URL:       image.URL,
			AssetID:   image.AssetID,
			FileName:  image.FileName,
			SizeBytes: image.SizeBytes,
			Position:  image.Position,
		})
	}

	return ProjectResponse{
		ID:              project.ID,
		Title:           project.Title,
		Description:     project.Description,
		Category:        project.Category,
		Materials:       project.Materials,
		Inspiration:     project.Inspiration,
		Status:          project.Status,
		RejectionReason: project.RejectionReason,
		Views:           project.Views,
		OwnerID:         project.UserID,
		OwnerName:       project.User.FullName(),
		Images:          images,
		ApprovedAt:      project.ApprovedAt,
		RejectedAt:      project.RejectedAt,
		ReviewedAt:      project.ReviewedAt,
		CreatedAt:       project.CreatedAt,
	}
}
