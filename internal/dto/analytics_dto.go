package dto

import "time"

// StudentStatisticsResponse summarises the account population.
type StudentStatisticsResponse struct {
	TotalStudents    int64                 `json:"total_students"`
	ApprovedStudents int64                 `json:"approved_students"`
	PendingStudents  int64                 `json:"pending_students"`
	TotalAdmins      int64                 `json:"total_admins"`
	ApprovalRate     float64               `json:"approval_rate"`
	Departments      []DepartmentBreakdown `json:"departments"`
	GeneratedAt      time.Time             `json:"generated_at"`
}

// DepartmentBreakdown reports per-department student and approval counts.
type DepartmentBreakdown struct {
	Department   string  `json:"department"`
	Students     int64   `json:"students"`
	Approved     int64   `json:"approved"`
	ApprovalRate float64 `json:"approval_rate"`
}

// ProjectStatisticsResponse summarises the submission population.
type ProjectStatisticsResponse struct {
	TotalProjects    int64     `json:"total_projects"`
	PendingProjects  int64     `json:"pending_projects"`
	ApprovedProjects int64     `json:"approved_projects"`
	RejectedProjects int64     `json:"rejected_projects"`
	TotalViews       int64     `json:"total_views"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// TrendPoint is one day bucket inside a trailing window.
type TrendPoint struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// CategoryRanking reports one entry of the top-categories table.
type CategoryRanking struct {
	Category     string  `json:"category"`
	Projects     int64   `json:"projects"`
	AverageViews float64 `json:"average_views"`
}

// AnalyticsDashboardResponse is the full admin dashboard rollup.
type AnalyticsDashboardResponse struct {
	Students         StudentStatisticsResponse `json:"students"`
	Projects         ProjectStatisticsResponse `json:"projects"`
	SignupTrend      []TrendPoint              `json:"signup_trend"`
	SubmissionTrend  []TrendPoint              `json:"submission_trend"`
	TopCategories    []CategoryRanking         `json:"top_categories"`
	ActiveToday      int64                     `json:"active_today"`
	GeneratedAt      time.Time                 `json:"generated_at"`
	CacheHit         bool                      `json:"cache_hit"`
	TrendWindowDays  int                       `json:"trend_window_days"`
	TopCategoryLimit int                       `json:"top_category_limit"`
}
