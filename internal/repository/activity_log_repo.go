package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/folio-go-api/internal/models"
)

// ActivityLogFilter narrows activity feed queries.
type ActivityLogFilter struct {
	Page     int
	PageSize int
	ActorID  *uint
	Action   string
}

// ActivityLogRepository persists the append-only audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
	// HasRecent reports whether an entry with the same actor, action and route
	// was written after the given instant. It is an advisory check: two
	// writers racing inside the window may both observe false.
	HasRecent(ctx context.Context, actorID uint, action, route string, since time.Time) (bool, error)
	CountDistinctActorsSince(ctx context.Context, since time.Time) (int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
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

	var entries []models.ActivityLog
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *activityLogRepository) HasRecent(ctx context.Context, actorID uint, action, route string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("actor_id = ? AND action = ? AND route = ? AND created_at >= ?", actorID, action, route, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *activityLogRepository) CountDistinctActorsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("created_at >= ?", since).
		Distinct("actor_id").
		Count(&count).Error
	return count, err
}
