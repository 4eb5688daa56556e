package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/folio-go-api/internal/models"
	"github.com/noah-isme/folio-go-api/internal/repository"
)

type activityLogRepoFake struct {
	entries []models.ActivityLog
	stamps  []time.Time
	clock   func() time.Time
}

func newActivityLogRepoFake(clock func() time.Time) *activityLogRepoFake {
	if clock == nil {
		clock = time.Now
	}
	return &activityLogRepoFake{clock: clock}
}

func (f *activityLogRepoFake) Create(_ context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(f.entries) + 1)
	entry.CreatedAt = f.clock()
	f.entries = append(f.entries, *entry)
	f.stamps = append(f.stamps, entry.CreatedAt)
	return nil
}

func (f *activityLogRepoFake) List(_ context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	matched := make([]models.ActivityLog, 0, len(f.entries))
	for _, entry := range f.entries {
		if filter.ActorID != nil && entry.ActorID != *filter.ActorID {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, int64(len(matched)), nil
}

func (f *activityLogRepoFake) HasRecent(_ context.Context, actorID uint, action, route string, since time.Time) (bool, error) {
	for i, entry := range f.entries {
		if entry.ActorID == actorID && entry.Action == action && entry.Route == route && !f.stamps[i].Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *activityLogRepoFake) CountDistinctActorsSince(_ context.Context, since time.Time) (int64, error) {
	actors := map[uint]struct{}{}
	for i, entry := range f.entries {
		if !f.stamps[i].Before(since) {
			actors[entry.ActorID] = struct{}{}
		}
	}
	return int64(len(actors)), nil
}

type userDirectoryFake struct {
	users map[uint]models.User
}

func (f *userDirectoryFake) GetByID(_ context.Context, id uint) (models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return models.User{}, context.Canceled
}

func newTestActivityService(repo *activityLogRepoFake, clock func() time.Time) *activityService {
	names := &userDirectoryFake{users: map[uint]models.User{
		1: {ID: 1, FirstName: "Mina", LastName: "Okafor", Role: models.RoleStudent},
		2: {ID: 2, FirstName: "Ada", LastName: "Reyes", Role: models.RoleAdmin},
	}}
	svc := NewActivityService(repo, names, NewActionClassifier(DefaultActionRules()), DedupeWindows{
		Default:       time.Second,
		AnalyticsView: 30 * time.Second,
		DashboardView: 2 * time.Minute,
	}, 2048, testLogger()).(*activityService)
	if clock != nil {
		svc.now = clock
	}
	return svc
}

func TestActivityServiceObserveClassifiesAndRedacts(t *testing.T) {
	repo := newActivityLogRepoFake(nil)
	svc := newTestActivityService(repo, nil)

	svc.Observe(context.Background(), RequestEvent{
		Actor:       Actor{ID: 1, Role: models.RoleStudent},
		Method:      "POST",
		Path:        "/api/v1/student/create-projects",
		Route:       "/api/v1/student/create-projects",
		StatusCode:  201,
		RequestBody: []byte(`{"title":"Gown","password":"hunter22"}`),
		IPAddress:   "10.0.0.1",
		UserAgent:   "go-test",
	})

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	require.Equal(t, ActionProjectSubmit, entry.Action)
	require.Equal(t, "project", entry.EntityType)
	require.Equal(t, uint(1), entry.ActorID)
	require.Equal(t, "Mina Okafor", entry.ActorName)
	require.Contains(t, entry.Description, "Mina")
	require.Equal(t, "10.0.0.1", entry.IPAddress)

	body, ok := entry.Metadata["request_body"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "Gown", body["title"])
	require.Equal(t, "***", body["password"], "credential fields must never reach the log")
}

func TestActivityServiceObserveIgnoresUnmatchedAndAnonymous(t *testing.T) {
	repo := newActivityLogRepoFake(nil)
	svc := newTestActivityService(repo, nil)

	svc.Observe(context.Background(), RequestEvent{
		Actor:      Actor{ID: 1, Role: models.RoleStudent},
		Method:     "GET",
		Path:       "/api/v1/student/get-student-projects",
		StatusCode: 200,
	})
	svc.Observe(context.Background(), RequestEvent{
		Method:     "POST",
		Path:       "/api/v1/student/create-projects",
		StatusCode: 201,
	})

	require.Empty(t, repo.entries)
}

func TestActivityServiceObserveDeduplicatesInsideWindow(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	current := base
	clock := func() time.Time { return current }

	repo := newActivityLogRepoFake(clock)
	svc := newTestActivityService(repo, clock)

	event := RequestEvent{
		Actor:      Actor{ID: 1, Role: models.RoleStudent},
		Method:     "POST",
		Path:       "/api/v1/student/save-profile",
		Route:      "/api/v1/student/save-profile",
		StatusCode: 200,
	}

	svc.Observe(context.Background(), event)
	current = base.Add(500 * time.Millisecond)
	svc.Observe(context.Background(), event)
	require.Len(t, repo.entries, 1, "a repeat inside one second is suppressed")

	current = base.Add(2 * time.Second)
	svc.Observe(context.Background(), event)
	require.Len(t, repo.entries, 2)
}

func TestActivityServiceAnalyticsViewWindows(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	current := base
	clock := func() time.Time { return current }

	repo := newActivityLogRepoFake(clock)
	svc := newTestActivityService(repo, clock)
	admin := Actor{ID: 2, Role: models.RoleAdmin}

	svc.RecordAnalyticsView(context.Background(), admin, "")
	current = base.Add(10 * time.Second)
	svc.RecordAnalyticsView(context.Background(), admin, "")
	require.Len(t, repo.entries, 1, "plain views inside 30s are suppressed")

	current = base.Add(40 * time.Second)
	svc.RecordAnalyticsView(context.Background(), admin, "")
	require.Len(t, repo.entries, 2)

	current = base.Add(time.Minute)
	svc.RecordAnalyticsView(context.Background(), admin, "students")
	current = base.Add(2 * time.Minute)
	svc.RecordAnalyticsView(context.Background(), admin, "students")
	require.Len(t, repo.entries, 3, "dashboard views inside 2m are suppressed")

	current = base.Add(4 * time.Minute)
	svc.RecordAnalyticsView(context.Background(), admin, "students")
	require.Len(t, repo.entries, 4)

	last := repo.entries[3]
	require.Equal(t, ActionDashboardView, last.Action)
	require.Equal(t, "analytics:students", last.Route)
}

func TestActivityServiceRecordActionSkipsBlankAction(t *testing.T) {
	repo := newActivityLogRepoFake(nil)
	svc := newTestActivityService(repo, nil)

	svc.RecordAction(context.Background(), Actor{ID: 1}, "  ", "project", nil, "", nil)
	svc.RecordAction(context.Background(), Actor{}, ActionLogin, "session", nil, "", nil)

	require.Empty(t, repo.entries)
}

func TestRedactBodyMasksNestedCredentials(t *testing.T) {
	raw := []byte(`{"user":{"email":"a@b.c","apiToken":"xyz"},"clientSecret":"abc"}`)

	result, ok := redactBody(raw, 2048).(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "***", result["clientSecret"])

	nested, ok := result["user"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "a@b.c", nested["email"])
	require.Equal(t, "***", nested["apiToken"])
}

func TestRedactBodyTruncatesNonJSON(t *testing.T) {
	raw := []byte("plain text payload")
	result, ok := redactBody(raw, 5).(string)
	require.True(t, ok)
	require.Equal(t, "plain", result)
}

func TestDescribeActionFallsBackToSomeone(t *testing.T) {
	require.Equal(t, "Someone signed in", describeAction(ActionLogin, "", ""))
	require.Equal(t, "Ada approved project #7", describeAction(ActionProjectApproval, "Ada", "#7"))
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}
