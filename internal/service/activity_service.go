package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/models"
	"github.com/noah-isme/folio-go-api/internal/observability"
	"github.com/noah-isme/folio-go-api/internal/repository"
)

// Actor identifies the authenticated account behind an auditable request.
type Actor struct {
	ID        uint
	Role      string
	FirstName string
	FullName  string
}

// RequestEvent is the observed outcome of one authenticated request, handed
// to the audit logger after the response has been decided.
type RequestEvent struct {
	Actor        Actor
	Method       string
	Path         string
	Route        string
	StatusCode   int
	RequestBody  []byte
	ResponseBody []byte
	ResourceID   *uint
	IPAddress    string
	UserAgent    string
}

// DedupeWindows holds the trailing intervals inside which a repeated action is
// suppressed. They are advisory throttles, not an exactly-once guarantee:
// writers racing inside a window may both insert.
type DedupeWindows struct {
	Default       time.Duration
	AnalyticsView time.Duration
	DashboardView time.Duration
}

// ActorNameResolver looks up the account behind an actor id so descriptions
// can carry the actor's name. The user repository satisfies it.
type ActorNameResolver interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
}

// ActivityRecorder is the narrow interface services use to emit audit events.
type ActivityRecorder interface {
	RecordAction(ctx context.Context, actor Actor, action, entityType string, entityID *uint, resource string, metadata map[string]interface{})
}

// ActivityService classifies, deduplicates and persists the audit trail.
type ActivityService interface {
	ActivityRecorder
	Observe(ctx context.Context, event RequestEvent)
	RecordAnalyticsView(ctx context.Context, actor Actor, dashboardType string)
	Feed(ctx context.Context, req dto.ActivityFeedRequest) (dto.ActivityFeedResponse, error)
}

type activityService struct {
	repo       repository.ActivityLogRepository
	names      ActorNameResolver
	classifier *ActionClassifier
	windows    DedupeWindows
	bodyLimit  int
	logger     zerolog.Logger
	now        func() time.Time
}

// NewActivityService constructs the audit logging service.
func NewActivityService(repo repository.ActivityLogRepository, names ActorNameResolver, classifier *ActionClassifier, windows DedupeWindows, bodyLimit int, logger zerolog.Logger) ActivityService {
	if windows.Default <= 0 {
		windows.Default = time.Second
	}
	if windows.AnalyticsView <= 0 {
		windows.AnalyticsView = 30 * time.Second
	}
	if windows.DashboardView <= 0 {
		windows.DashboardView = 2 * time.Minute
	}
	if bodyLimit <= 0 {
		bodyLimit = 2048
	}

	return &activityService{
		repo:       repo,
		names:      names,
		classifier: classifier,
		windows:    windows,
		bodyLimit:  bodyLimit,
		logger:     logger.With().Str("component", "activity_service").Logger(),
		now:        time.Now,
	}
}

// Observe maps an authenticated request to at most one audit entry. It never
// returns an error: the trail is best-effort and a lost entry is simply lost.
func (s *activityService) Observe(ctx context.Context, event RequestEvent) {
	if event.Actor.ID == 0 {
		return
	}

	rule, ok := s.classifier.Classify(event.Method, event.Path)
	if !ok {
		return
	}

	route := event.Route
	if route == "" {
		route = event.Path
	}

	suppressed, err := s.isDuplicate(ctx, event.Actor.ID, rule.Action, route, s.windows.Default)
	if err != nil {
		s.logger.Warn().Err(err).Str("action", rule.Action).Msg("dedupe check failed, dropping audit entry")
		return
	}
	if suppressed {
		observability.AuditSuppressed().WithLabelValues(rule.Action).Inc()
		return
	}

	actor := s.resolveActor(ctx, event.Actor)

	metadata := map[string]interface{}{
		"method": event.Method,
		"route":  route,
		"status": event.StatusCode,
	}

	if isMutating(event.Method) {
		if body := redactBody(event.RequestBody, s.bodyLimit); body != nil {
			metadata["request_body"] = body
		}
	}
	if rule.LogResponse {
		if body := redactBody(event.ResponseBody, s.bodyLimit); body != nil {
			metadata["response_body"] = body
		}
	}

	resource := ""
	if event.ResourceID != nil {
		resource = fmt.Sprintf("#%d", *event.ResourceID)
	}

	entry := models.ActivityLog{
		ActorID:     actor.ID,
		ActorRole:   normalizeActorRole(actor.Role),
		ActorName:   actor.FullName,
		Action:      rule.Action,
		Description: describeAction(rule.Action, actor.FirstName, resource),
		EntityType:  rule.EntityType,
		EntityID:    event.ResourceID,
		Method:      event.Method,
		Route:       route,
		StatusCode:  event.StatusCode,
		Metadata:    toJSONMap(metadata),
		IPAddress:   event.IPAddress,
		UserAgent:   event.UserAgent,
	}

	s.persist(ctx, entry)
}

// RecordAction writes an audit entry on behalf of a service-level event that
// the request classifier cannot see (login, signup). Failures are swallowed.
func (s *activityService) RecordAction(ctx context.Context, actor Actor, action, entityType string, entityID *uint, resource string, metadata map[string]interface{}) {
	if actor.ID == 0 || strings.TrimSpace(action) == "" {
		return
	}

	suppressed, err := s.isDuplicate(ctx, actor.ID, action, entityType, s.windows.Default)
	if err != nil || suppressed {
		if suppressed {
			observability.AuditSuppressed().WithLabelValues(action).Inc()
		}
		return
	}

	actor = s.resolveActor(ctx, actor)

	entry := models.ActivityLog{
		ActorID:     actor.ID,
		ActorRole:   normalizeActorRole(actor.Role),
		ActorName:   actor.FullName,
		Action:      action,
		Description: describeAction(action, actor.FirstName, resource),
		EntityType:  entityType,
		EntityID:    entityID,
		Route:       entityType,
		Metadata:    toJSONMap(metadata),
	}

	s.persist(ctx, entry)
}

// RecordAnalyticsView notes that an admin viewed a dashboard. The plain view
// uses the 30 second window; dashboard-type-specific notes use the stricter
// 2 minute window so an auto-refreshing screen cannot inflate the feed.
func (s *activityService) RecordAnalyticsView(ctx context.Context, actor Actor, dashboardType string) {
	if actor.ID == 0 {
		return
	}

	action := ActionAnalyticsView
	window := s.windows.AnalyticsView
	route := "analytics"
	if dashboardType != "" {
		action = ActionDashboardView
		window = s.windows.DashboardView
		route = "analytics:" + dashboardType
	}

	suppressed, err := s.isDuplicate(ctx, actor.ID, action, route, window)
	if err != nil || suppressed {
		if suppressed {
			observability.AuditSuppressed().WithLabelValues(action).Inc()
		}
		return
	}

	metadata := map[string]interface{}{}
	if dashboardType != "" {
		metadata["dashboard"] = dashboardType
	}

	actor = s.resolveActor(ctx, actor)

	entry := models.ActivityLog{
		ActorID:     actor.ID,
		ActorRole:   normalizeActorRole(actor.Role),
		ActorName:   actor.FullName,
		Action:      action,
		Description: describeAction(action, actor.FirstName, dashboardType),
		EntityType:  "analytics",
		Route:       route,
		Metadata:    toJSONMap(metadata),
	}

	s.persist(ctx, entry)
}

func (s *activityService) Feed(ctx context.Context, req dto.ActivityFeedRequest) (dto.ActivityFeedResponse, error) {
	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize)

	filter := repository.ActivityLogFilter{
		Page:     page,
		PageSize: pageSize,
		ActorID:  req.ActorID,
		Action:   strings.ToLower(strings.TrimSpace(req.Action)),
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityFeedResponse{}, err
	}

	items := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActivityResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: 1,
	}
	if pageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}

	return dto.ActivityFeedResponse{Items: items, Pagination: pagination}, nil
}

// resolveActor fills in the actor's name when the caller only knows the
// token-derived id and role. A failed lookup falls back to the bare actor.
func (s *activityService) resolveActor(ctx context.Context, actor Actor) Actor {
	if actor.FirstName != "" || s.names == nil {
		return actor
	}

	user, err := s.names.GetByID(ctx, actor.ID)
	if err != nil {
		return actor
	}

	actor.FirstName = user.FirstName
	actor.FullName = user.FullName()
	if actor.Role == "" {
		actor.Role = user.Role
	}
	return actor
}

func (s *activityService) isDuplicate(ctx context.Context, actorID uint, action, route string, window time.Duration) (bool, error) {
	since := s.now().Add(-window)
	return s.repo.HasRecent(ctx, actorID, action, route, since)
}

func (s *activityService) persist(ctx context.Context, entry models.ActivityLog) {
	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to persist audit entry")
		return
	}
	observability.AuditLogged().WithLabelValues(entry.Action).Inc()
}

var actionTemplates = map[string]string{
	ActionStudentSignup:    "%s registered a student account",
	ActionAdminSignup:      "%s registered an administrator account",
	ActionLogin:            "%s signed in",
	ActionProfileUpdate:    "%s updated their profile",
	ActionProjectSubmit:    "%s submitted project %s",
	ActionProjectUpdate:    "%s updated project %s",
	ActionProjectDelete:    "%s deleted project %s",
	ActionStudentApproval:  "%s approved student %s",
	ActionStudentDeletion:  "%s deleted student %s",
	ActionProjectApproval:  "%s approved project %s",
	ActionProjectRejection: "%s rejected project %s",
	ActionAnalyticsView:    "%s viewed the analytics dashboard",
	ActionDashboardView:    "%s viewed the %s dashboard",
}

func describeAction(action, firstName, resource string) string {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "Someone"
	}

	template, ok := actionTemplates[action]
	if !ok {
		return fmt.Sprintf("%s performed %s", name, action)
	}

	if strings.Count(template, "%s") == 1 {
		return fmt.Sprintf(template, name)
	}
	return strings.TrimSpace(fmt.Sprintf(template, name, resource))
}

// redactBody strips credential fields from a JSON body and truncates it.
// Non-JSON payloads are stored as a truncated string.
func redactBody(raw []byte, limit int) interface{} {
	if len(raw) == 0 {
		return nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		if limit > 0 && len(raw) > limit {
			raw = raw[:limit]
		}
		return string(raw)
	}

	redacted := redactMap(payload)
	if limit > 0 {
		if encoded, err := json.Marshal(redacted); err == nil && len(encoded) > limit {
			return string(encoded[:limit])
		}
	}
	return redacted
}

func redactMap(payload map[string]interface{}) map[string]interface{} {
	for key, value := range payload {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			payload[key] = "***"
			continue
		}
		if nested, ok := value.(map[string]interface{}); ok {
			payload[key] = redactMap(nested)
		}
	}
	return payload
}

func toJSONMap(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}
	out := datatypes.JSONMap{}
	for key, value := range metadata {
		out[key] = value
	}
	return out
}

func normalizeActorRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "" {
		return "system"
	}
	return r
}

func isMutating(method string) bool {
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH":
		return true
	default:
		return false
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampPageSize(size int) int {
	if size <= 0 {
		return 20
	}
	if size > 100 {
		return 100
	}
	return size
}
