package repository

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/folio-go-api/internal/models"
)

// RoleApprovalCount groups accounts by role and approval state.
type RoleApprovalCount struct {
	Role       string
	IsApproved bool
	Total      int64
}

// DepartmentCount groups student accounts by department.
type DepartmentCount struct {
	Department string
	Total      int64
	Approved   int64
}

// StatusCount groups projects by moderation status, carrying the view sum.
type StatusCount struct {
	Status string
	Total  int64
	Views  int64
}

// DayCount is one day bucket of a registration or submission trend.
type DayCount struct {
	Day   time.Time
	Total int64
}

// CategoryStat aggregates project counts and views per category.
type CategoryStat struct {
	Category string
	Total    int64
	Views    int64
}

// AnalyticsRepository serves the read-only reporting rollups.
type AnalyticsRepository interface {
	CountUsersByRoleAndApproval(ctx context.Context) ([]RoleApprovalCount, error)
	CountStudentsByDepartment(ctx context.Context) ([]DepartmentCount, error)
	CountProjectsByStatus(ctx context.Context) ([]StatusCount, error)
	CountSignupsPerDay(ctx context.Context, since time.Time) ([]DayCount, error)
	CountSubmissionsPerDay(ctx context.Context, since time.Time) ([]DayCount, error)
	TopCategories(ctx context.Context, limit int) ([]CategoryStat, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository constructs the reporting repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CountUsersByRoleAndApproval(ctx context.Context) ([]RoleApprovalCount, error) {
	var rows []RoleApprovalCount
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, is_approved, COUNT(*) AS total").
		Group("role").Group("is_approved").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) CountStudentsByDepartment(ctx context.Context) ([]DepartmentCount, error) {
	var rows []DepartmentCount
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("department, COUNT(*) AS total, SUM(CASE WHEN is_approved THEN 1 ELSE 0 END) AS approved").
		Where("role = ?", models.RoleStudent).
		Group("department").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) CountProjectsByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Select("status, COUNT(*) AS total, COALESCE(SUM(views), 0) AS views").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) CountSignupsPerDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	return r.countPerDay(ctx, &models.User{}, since)
}

func (r *analyticsRepository) CountSubmissionsPerDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	return r.countPerDay(ctx, &models.Project{}, since)
}

// countPerDay buckets rows in Go rather than with a dialect-specific
// DATE_TRUNC so the same query runs on postgres and the sqlite test driver.
func (r *analyticsRepository) countPerDay(ctx context.Context, model interface{}, since time.Time) ([]DayCount, error) {
	var stamps []time.Time
	err := r.db.WithContext(ctx).Model(model).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &stamps).Error
	if err != nil {
		return nil, err
	}

	buckets := map[time.Time]int64{}
	for _, stamp := range stamps {
		day := time.Date(stamp.Year(), stamp.Month(), stamp.Day(), 0, 0, 0, 0, time.UTC)
		buckets[day]++
	}

	days := make([]DayCount, 0, len(buckets))
	for day, total := range buckets {
		days = append(days, DayCount{Day: day, Total: total})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days, nil
}

func (r *analyticsRepository) TopCategories(ctx context.Context, limit int) ([]CategoryStat, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []CategoryStat
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Select("category, COUNT(*) AS total, COALESCE(SUM(views), 0) AS views").
		Group("category").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
