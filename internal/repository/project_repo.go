package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/folio-go-api/internal/models"
)

// GalleryFilter narrows the public gallery query. Only approved projects are
// ever returned through it.
type GalleryFilter struct {
	Category string
	Search   string
	Page     int
	PageSize int
}

// ProjectRepository persists student submissions and their hosted images.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (models.Project, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Project, error)
	ListApproved(ctx context.Context, filter GalleryFilter) ([]models.Project, int64, error)
	CountApprovedByCategory(ctx context.Context) (map[string]int64, error)
	Update(ctx context.Context, project *models.Project) error
	UpdateStatus(ctx context.Context, id uint, updates map[string]interface{}) error
	IncrementViews(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	DeleteByOwner(ctx context.Context, ownerID uint) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository constructs the project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("User").
		First(&project, id).Error
	return project, err
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) ListApproved(ctx context.Context, filter GalleryFilter) ([]models.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("status = ?", models.ProjectStatusApproved)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var projects []models.Project
	err := query.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("User").
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

func (r *projectRepository) CountApprovedByCategory(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Category string
		Total    int64
	}

	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Select("category, COUNT(*) AS total").
		Where("status = ?", models.ProjectStatusApproved).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.Total
	}
	return counts, nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *projectRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Select("Images").Delete(&models.Project{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *projectRepository) DeleteByOwner(ctx context.Context, ownerID uint) error {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("user_id = ?", ownerID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).
		Where("project_id IN ?", ids).
		Delete(&models.ProjectImage{}).Error; err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Delete(&models.Project{}).Error
}
