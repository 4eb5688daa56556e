package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/models"
	"github.com/noah-isme/folio-go-api/internal/repository"
	"github.com/noah-isme/folio-go-api/pkg/cloudinary"
)

type projectRepoFake struct {
	nextID   uint
	projects map[uint]models.Project
}

func newProjectRepoFake() *projectRepoFake {
	return &projectRepoFake{projects: map[uint]models.Project{}}
}

func (f *projectRepoFake) Create(_ context.Context, project *models.Project) error {
	f.nextID++
	project.ID = f.nextID
	project.CreatedAt = time.Now()
	f.projects[project.ID] = *project
	return nil
}

func (f *projectRepoFake) GetByID(_ context.Context, id uint) (models.Project, error) {
	if project, ok := f.projects[id]; ok {
		return project, nil
	}
	return models.Project{}, gorm.ErrRecordNotFound
}

func (f *projectRepoFake) ListByOwner(_ context.Context, ownerID uint) ([]models.Project, error) {
	var owned []models.Project
	for _, project := range f.projects {
		if project.UserID == ownerID {
			owned = append(owned, project)
		}
	}
	return owned, nil
}

func (f *projectRepoFake) ListApproved(_ context.Context, filter repository.GalleryFilter) ([]models.Project, int64, error) {
	var approved []models.Project
	for _, project := range f.projects {
		if project.Status != models.ProjectStatusApproved {
			continue
		}
		if filter.Category != "" && project.Category != filter.Category {
			continue
		}
		approved = append(approved, project)
	}
	return approved, int64(len(approved)), nil
}

func (f *projectRepoFake) CountApprovedByCategory(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, project := range f.projects {
		if project.Status == models.ProjectStatusApproved {
			counts[project.Category]++
		}
	}
	return counts, nil
}

func (f *projectRepoFake) Update(_ context.Context, project *models.Project) error {
	if _, ok := f.projects[project.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.projects[project.ID] = *project
	return nil
}

func (f *projectRepoFake) UpdateStatus(_ context.Context, id uint, updates map[string]interface{}) error {
	project, ok := f.projects[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"].(string); ok {
		project.Status = status
	}
	if reviewedAt, ok := updates["reviewed_at"].(time.Time); ok {
		project.ReviewedAt = &reviewedAt
	}
	if approvedAt, ok := updates["approved_at"].(time.Time); ok {
		project.ApprovedAt = &approvedAt
	}
	if rejectedAt, ok := updates["rejected_at"].(time.Time); ok {
		project.RejectedAt = &rejectedAt
	}
	if reason, ok := updates["rejection_reason"].(string); ok {
		project.RejectionReason = reason
	}
	f.projects[id] = project
	return nil
}

func (f *projectRepoFake) IncrementViews(_ context.Context, id uint) error {
	project, ok := f.projects[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	project.Views++
	f.projects[id] = project
	return nil
}

func (f *projectRepoFake) Delete(_ context.Context, id uint) error {
	if _, ok := f.projects[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *projectRepoFake) DeleteByOwner(_ context.Context, ownerID uint) error {
	for id, project := range f.projects {
		if project.UserID == ownerID {
			delete(f.projects, id)
		}
	}
	return nil
}

type imageHostFake struct {
	calls int
	fail  error
}

func (h *imageHostFake) Upload(_ context.Context, name string, _ io.Reader) (cloudinary.Asset, error) {
	h.calls++
	if h.fail != nil {
		return cloudinary.Asset{}, h.fail
	}
	return cloudinary.Asset{
		URL:       "https://cdn.example.com/" + name,
		AssetID:   "asset-" + name,
		SizeBytes: 64,
	}, nil
}

type namedFile struct {
	name string
	data []byte
}

// pngBytes is a minimal PNG signature the content sniffer accepts.
var pngBytes = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)

func fileHeaders(t *testing.T, files []namedFile) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, file := range files {
		part, err := writer.CreateFormFile("images", file.name)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(64 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["images"]
}

func newTestProjectService(repo *projectRepoFake, host *imageHostFake, recorder *recorderFake) *projectService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewProjectService(repo, host, validate, recorder, 10, 10, testLogger()).(*projectService)
}

func validCreatePayload() dto.ProjectCreateRequest {
	return dto.ProjectCreateRequest{
		Title:       "Velvet Evening Gown",
		Description: "Hand-stitched velvet gown",
		Category:    models.CategoryCouture,
	}
}

func TestProjectServiceCreateRequiresAtLeastOneImage(t *testing.T) {
	host := &imageHostFake{}
	svc := newTestProjectService(newProjectRepoFake(), host, &recorderFake{})

	_, err := svc.Create(context.Background(), Actor{ID: 1, Role: models.RoleStudent}, validCreatePayload(), nil)
	require.ErrorIs(t, err, ErrNoImages)
	require.Zero(t, host.calls)
}

func TestProjectServiceCreateRejectsElevenImagesBeforeRelay(t *testing.T) {
	host := &imageHostFake{}
	svc := newTestProjectService(newProjectRepoFake(), host, &recorderFake{})

	files := make([]namedFile, 11)
	for i := range files {
		files[i] = namedFile{name: "look.png", data: pngBytes}
	}

	_, err := svc.Create(context.Background(), Actor{ID: 1, Role: models.RoleStudent}, validCreatePayload(), fileHeaders(t, files))
	require.ErrorIs(t, err, ErrTooManyImages)
	require.Zero(t, host.calls, "the provider must not be reached when the count ceiling fails")
}

func TestProjectServiceCreateRejectsNonImageBytes(t *testing.T) {
	host := &imageHostFake{}
	svc := newTestProjectService(newProjectRepoFake(), host, &recorderFake{})

	files := []namedFile{{name: "notes.txt", data: []byte("just text, not an image")}}

	_, err := svc.Create(context.Background(), Actor{ID: 1, Role: models.RoleStudent}, validCreatePayload(), fileHeaders(t, files))
	require.ErrorIs(t, err, ErrUnsupportedImageType)
	require.Zero(t, host.calls)
}

func TestProjectServiceCreateRejectsOversizedImage(t *testing.T) {
	host := &imageHostFake{}
	repo := newProjectRepoFake()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewProjectService(repo, host, validate, &recorderFake{}, 1, 10, testLogger())

	big := append(append([]byte(nil), pngBytes...), make([]byte, 2<<20)...)
	files := []namedFile{{name: "huge.png", data: big}}

	_, err := svc.Create(context.Background(), Actor{ID: 1, Role: models.RoleStudent}, validCreatePayload(), fileHeaders(t, files))
	require.ErrorIs(t, err, ErrImageTooLarge)
	require.Zero(t, host.calls)
}

func TestProjectServiceCreateRejectsUnknownCategory(t *testing.T) {
	svc := newTestProjectService(newProjectRepoFake(), &imageHostFake{}, &recorderFake{})

	payload := validCreatePayload()
	payload.Category = "sculpture"

	_, err := svc.Create(context.Background(), Actor{ID: 1, Role: models.RoleStudent}, payload, fileHeaders(t, []namedFile{{name: "a.png", data: pngBytes}}))
	require.ErrorIs(t, err, ErrInvalidCategory)
}

func TestProjectServiceCreatePersistsPendingProject(t *testing.T) {
	host := &imageHostFake{}
	repo := newProjectRepoFake()
	recorder := &recorderFake{}
	svc := newTestProjectService(repo, host, recorder)

	payload := validCreatePayload()
	payload.Description = `<script>alert(1)</script>Hand-stitched velvet gown`

	files := []namedFile{
		{name: "front.png", data: pngBytes},
		{name: "back.png", data: pngBytes},
	}

	resp, err := svc.Create(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, payload, fileHeaders(t, files))
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusPending, resp.Status)
	require.Equal(t, uint(5), resp.OwnerID)
	require.Len(t, resp.Images, 2)
	require.Equal(t, 0, resp.Images[0].Position)
	require.Equal(t, 1, resp.Images[1].Position)
	require.Equal(t, 2, host.calls)
	require.NotContains(t, resp.Description, "<script>", "markup is stripped before persistence")
	require.Equal(t, []string{ActionProjectSubmit}, recorder.actions)
}

func TestProjectServiceUpdateEnforcesOwnership(t *testing.T) {
	repo := newProjectRepoFake()
	svc := newTestProjectService(repo, &imageHostFake{}, &recorderFake{})

	project := models.Project{Title: "Theirs", Category: models.CategoryTextile, Status: models.ProjectStatusPending, UserID: 2}
	require.NoError(t, repo.Create(context.Background(), &project))

	title := "Mine now"
	_, err := svc.Update(context.Background(), Actor{ID: 1, Role: models.RoleStudent}, project.ID, dto.ProjectUpdateRequest{Title: &title}, nil)
	require.ErrorIs(t, err, ErrNotProjectOwner)
}

func TestProjectServiceApproveStampsReviewTimes(t *testing.T) {
	repo := newProjectRepoFake()
	recorder := &recorderFake{}
	svc := newTestProjectService(repo, &imageHostFake{}, recorder)

	reviewedAt := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return reviewedAt }

	project := models.Project{Title: "Gown", Category: models.CategoryCouture, Status: models.ProjectStatusPending, UserID: 1}
	require.NoError(t, repo.Create(context.Background(), &project))

	resp, err := svc.Approve(context.Background(), project.ID, Actor{ID: 9, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusApproved, resp.Status)
	require.NotNil(t, resp.ApprovedAt)
	require.Equal(t, reviewedAt, *resp.ApprovedAt)
	require.NotNil(t, resp.ReviewedAt)
	require.Equal(t, []string{ActionProjectApproval}, recorder.actions)
}

func TestProjectServiceModerationIsSingleShot(t *testing.T) {
	repo := newProjectRepoFake()
	svc := newTestProjectService(repo, &imageHostFake{}, &recorderFake{})

	project := models.Project{Title: "Gown", Category: models.CategoryCouture, Status: models.ProjectStatusPending, UserID: 1}
	require.NoError(t, repo.Create(context.Background(), &project))

	_, err := svc.Approve(context.Background(), project.ID, Actor{ID: 9, Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), project.ID, "changed my mind", Actor{ID: 9, Role: models.RoleAdmin})
	require.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestProjectServiceRejectRequiresReason(t *testing.T) {
	repo := newProjectRepoFake()
	svc := newTestProjectService(repo, &imageHostFake{}, &recorderFake{})

	project := models.Project{Title: "Gown", Category: models.CategoryCouture, Status: models.ProjectStatusPending, UserID: 1}
	require.NoError(t, repo.Create(context.Background(), &project))

	_, err := svc.Reject(context.Background(), project.ID, "   ", Actor{ID: 9, Role: models.RoleAdmin})
	require.ErrorIs(t, err, ErrReasonRequired)

	resp, err := svc.Reject(context.Background(), project.ID, "blurred photos", Actor{ID: 9, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusRejected, resp.Status)
	require.Equal(t, "blurred photos", resp.RejectionReason)
	require.NotNil(t, resp.RejectedAt)
}

func TestProjectServiceGalleryRejectsUnknownCategory(t *testing.T) {
	svc := newTestProjectService(newProjectRepoFake(), &imageHostFake{}, &recorderFake{})

	_, err := svc.Gallery(context.Background(), dto.GalleryRequest{Category: "sculpture"})
	require.ErrorIs(t, err, ErrInvalidCategory)
}

func TestProjectServiceGalleryDetailHidesUnapproved(t *testing.T) {
	repo := newProjectRepoFake()
	svc := newTestProjectService(repo, &imageHostFake{}, &recorderFake{})

	project := models.Project{Title: "Hidden", Category: models.CategoryOther, Status: models.ProjectStatusPending, UserID: 1}
	require.NoError(t, repo.Create(context.Background(), &project))

	_, err := svc.GalleryDetail(context.Background(), project.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectServiceGalleryDetailCountsView(t *testing.T) {
	repo := newProjectRepoFake()
	svc := newTestProjectService(repo, &imageHostFake{}, &recorderFake{})

	project := models.Project{Title: "Shown", Category: models.CategoryOther, Status: models.ProjectStatusApproved, UserID: 1}
	require.NoError(t, repo.Create(context.Background(), &project))

	resp, err := svc.GalleryDetail(context.Background(), project.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Views)
	require.Equal(t, int64(1), repo.projects[project.ID].Views)
}

func TestProjectServiceCategoriesListsFullEnum(t *testing.T) {
	repo := newProjectRepoFake()
	svc := newTestProjectService(repo, &imageHostFake{}, &recorderFake{})

	approved := models.Project{Title: "A", Category: models.CategoryTextile, Status: models.ProjectStatusApproved, UserID: 1}
	require.NoError(t, repo.Create(context.Background(), &approved))

	counts, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, len(models.KnownCategories), "every enum value appears even with zero projects")

	byCategory := map[string]int64{}
	for _, count := range counts {
		byCategory[count.Category] = count.Count
	}
	require.Equal(t, int64(1), byCategory[models.CategoryTextile])
	require.Zero(t, byCategory[models.CategoryCouture])
}

func TestProjectServiceCreateAbortsOnProviderFailure(t *testing.T) {
	host := &imageHostFake{fail: io.ErrUnexpectedEOF}
	repo := newProjectRepoFake()
	svc := newTestProjectService(repo, host, &recorderFake{})

	_, err := svc.Create(context.Background(), Actor{ID: 1, Role: models.RoleStudent}, validCreatePayload(), fileHeaders(t, []namedFile{{name: "a.png", data: pngBytes}}))
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "unexpected EOF"))
	require.Empty(t, repo.projects, "nothing is persisted when the relay fails")
}
