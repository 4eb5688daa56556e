package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/models"
	"github.com/noah-isme/folio-go-api/internal/repository"
)

const (
	trendWindowDays  = 30
	topCategoryLimit = 10
)

// AnalyticsService serves the read-only reporting rollups for the admin
// dashboards. Every operation is independent and idempotent.
type AnalyticsService interface {
	StudentStatistics(ctx context.Context) (dto.StudentStatisticsResponse, error)
	ProjectStatistics(ctx context.Context) (dto.ProjectStatisticsResponse, error)
	Dashboard(ctx context.Context) (dto.AnalyticsDashboardResponse, error)
}

type analyticsService struct {
	repo     repository.AnalyticsRepository
	activity repository.ActivityLogRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAnalyticsService constructs the reporting reader.
func NewAnalyticsService(repo repository.AnalyticsRepository, activity repository.ActivityLogRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &analyticsService{
		repo:     repo,
		activity: activity,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "analytics_service").Logger(),
		now:      time.Now,
	}
}

func (s *analyticsService) StudentStatistics(ctx context.Context) (dto.StudentStatisticsResponse, error) {
	roleCounts, err := s.repo.CountUsersByRoleAndApproval(ctx)
	if err != nil {
		return dto.StudentStatisticsResponse{}, err
	}

	departments, err := s.repo.CountStudentsByDepartment(ctx)
	if err != nil {
		return dto.StudentStatisticsResponse{}, err
	}

	return s.buildStudentStatistics(roleCounts, departments), nil
}

func (s *analyticsService) buildStudentStatistics(roleCounts []repository.RoleApprovalCount, departments []repository.DepartmentCount) dto.StudentStatisticsResponse {
	response := dto.StudentStatisticsResponse{GeneratedAt: s.now()}

	for _, row := range roleCounts {
		switch row.Role {
		case models.RoleStudent:
			response.TotalStudents += row.Total
			if row.IsApproved {
				response.ApprovedStudents += row.Total
			} else {
				response.PendingStudents += row.Total
			}
		case models.RoleAdmin:
			response.TotalAdmins += row.Total
		}
	}

	response.ApprovalRate = approvalRate(response.ApprovedStudents, response.TotalStudents)

	response.Departments = make([]dto.DepartmentBreakdown, 0, len(departments))
	for _, row := range departments {
		response.Departments = append(response.Departments, dto.DepartmentBreakdown{
			Department:   row.Department,
			Students:     row.Total,
			Approved:     row.Approved,
			ApprovalRate: approvalRate(row.Approved, row.Total),
		})
	}

	return response
}

func (s *analyticsService) ProjectStatistics(ctx context.Context) (dto.ProjectStatisticsResponse, error) {
	statusCounts, err := s.repo.CountProjectsByStatus(ctx)
	if err != nil {
		return dto.ProjectStatisticsResponse{}, err
	}

	response := dto.ProjectStatisticsResponse{GeneratedAt: s.now()}
	for _, row := range statusCounts {
		response.TotalProjects += row.Total
		response.TotalViews += row.Views
		switch row.Status {
		case models.ProjectStatusPending:
			response.PendingProjects = row.Total
		case models.ProjectStatusApproved:
			response.ApprovedProjects = row.Total
		case models.ProjectStatusRejected:
			response.RejectedProjects = row.Total
		}
	}

	return response, nil
}

func (s *analyticsService) Dashboard(ctx context.Context) (dto.AnalyticsDashboardResponse, error) {
	const cacheKey = "analytics:dashboard"
	tracer := otel.Tracer("github.com/noah-isme/folio-go-api/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.dashboard")
	span.SetAttributes(attribute.String("analytics.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.AnalyticsDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
			span.RecordError(err)
		}
	}

	now := s.now()

	roleCounts, err := s.repo.CountUsersByRoleAndApproval(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_users_failed")
		return dto.AnalyticsDashboardResponse{}, err
	}

	departments, err := s.repo.CountStudentsByDepartment(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_departments_failed")
		return dto.AnalyticsDashboardResponse{}, err
	}

	projects, err := s.ProjectStatistics(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_projects_failed")
		return dto.AnalyticsDashboardResponse{}, err
	}

	windowStart := now.AddDate(0, 0, -trendWindowDays)

	signups, err := s.repo.CountSignupsPerDay(ctx, windowStart)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "signup_trend_failed")
		return dto.AnalyticsDashboardResponse{}, err
	}

	submissions, err := s.repo.CountSubmissionsPerDay(ctx, windowStart)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_trend_failed")
		return dto.AnalyticsDashboardResponse{}, err
	}

	categories, err := s.repo.TopCategories(ctx, topCategoryLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "top_categories_failed")
		return dto.AnalyticsDashboardResponse{}, err
	}

	// Active today counts distinct actors in the audit trail since local midnight.
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	activeToday, err := s.activity.CountDistinctActorsSince(ctx, midnight)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "active_today_failed")
		return dto.AnalyticsDashboardResponse{}, err
	}

	response := dto.AnalyticsDashboardResponse{
		Students:         s.buildStudentStatistics(roleCounts, departments),
		Projects:         projects,
		SignupTrend:      toTrendPoints(signups),
		SubmissionTrend:  toTrendPoints(submissions),
		TopCategories:    toCategoryRankings(categories),
		ActiveToday:      activeToday,
		GeneratedAt:      now,
		TrendWindowDays:  trendWindowDays,
		TopCategoryLimit: topCategoryLimit,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

// approvalRate is approved/total*100 rounded to one decimal, defined as 0
// when there are no students.
func approvalRate(approved, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(approved)/float64(total)*1000) / 10
}

func toTrendPoints(days []repository.DayCount) []dto.TrendPoint {
	points := make([]dto.TrendPoint, 0, len(days))
	for _, day := range days {
		points = append(points, dto.TrendPoint{Day: day.Day, Count: day.Total})
	}
	return points
}

func toCategoryRankings(stats []repository.CategoryStat) []dto.CategoryRanking {
	rankings := make([]dto.CategoryRanking, 0, len(stats))
	for _, stat := range stats {
		average := 0.0
		if stat.Total > 0 {
			average = math.Round(float64(stat.Views)/float64(stat.Total)*10) / 10
		}
		rankings = append(rankings, dto.CategoryRanking{
			Category:     stat.Category,
			Projects:     stat.Total,
			AverageViews: average,
		})
	}
	return rankings
}
