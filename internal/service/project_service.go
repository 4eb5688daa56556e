package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/models"
	"github.com/noah-isme/folio-go-api/internal/observability"
	"github.com/noah-isme/folio-go-api/internal/repository"
	"github.com/noah-isme/folio-go-api/pkg/cloudinary"
)

var (
	// ErrProjectNotFound indicates the submission does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrNotProjectOwner indicates the acting student does not own the submission.
	ErrNotProjectOwner = errors.New("project belongs to another student")
	// ErrNoImages indicates a submission without any image.
	ErrNoImages = errors.New("at least one image required")
	// ErrTooManyImages indicates the image count ceiling was exceeded.
	ErrTooManyImages = errors.New("too many images attached")
	// ErrImageTooLarge indicates a single image exceeded the size ceiling.
	ErrImageTooLarge = errors.New("image exceeds maximum allowed size")
	// ErrUnsupportedImageType indicates the bytes are not an image.
	ErrUnsupportedImageType = errors.New("file is not a supported image type")
	// ErrInvalidCategory indicates a value outside the category enum.
	ErrInvalidCategory = errors.New("unknown project category")
	// ErrReasonRequired indicates a rejection without a reason.
	ErrReasonRequired = errors.New("rejection reason is required")
	// ErrAlreadyReviewed indicates a second moderation pass over the same project.
	ErrAlreadyReviewed = errors.New("project has already been reviewed")
)

// ImageHost relays validated image bytes to the external hosting provider.
type ImageHost interface {
	Upload(ctx context.Context, name string, reader io.Reader) (cloudinary.Asset, error)
}

// ProjectService manages submissions, moderation and the public gallery.
type ProjectService interface {
	Create(ctx context.Context, actor Actor, payload dto.ProjectCreateRequest, images []*multipart.FileHeader) (dto.ProjectResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.ProjectUpdateRequest, images []*multipart.FileHeader) (dto.ProjectResponse, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]dto.ProjectResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.ProjectResponse, error)
	Approve(ctx context.Context, id uint, actor Actor) (dto.ProjectResponse, error)
	Reject(ctx context.Context, id uint, reason string, actor Actor) (dto.ProjectResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	Gallery(ctx context.Context, req dto.GalleryRequest) (dto.ProjectListResponse, error)
	GalleryDetail(ctx context.Context, id uint) (dto.ProjectResponse, error)
	Categories(ctx context.Context) ([]dto.CategoryCount, error)
}

type projectService struct {
	repo      repository.ProjectRepository
	host      ImageHost
	validator *validator.Validate
	activity  ActivityRecorder
	sanitizer *bluemonday.Policy
	maxBytes  int64
	maxImages int
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewProjectService constructs the project service.
func NewProjectService(repo repository.ProjectRepository, host ImageHost, validator *validator.Validate, activity ActivityRecorder, maxSizeMB, maxImages int, logger zerolog.Logger) ProjectService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxImages <= 0 {
		maxImages = 10
	}
	return &projectService{
		repo:      repo,
		host:      host,
		validator: validator,
		activity:  activity,
		sanitizer: bluemonday.StrictPolicy(),
		maxBytes:  int64(maxSizeMB) * 1024 * 1024,
		maxImages: maxImages,
		logger:    logger.With().Str("component", "project_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/folio-go-api/internal/service/project"),
		now:       time.Now,
	}
}

type bufferedImage struct {
	name string
	data []byte
}

func (s *projectService) Create(ctx context.Context, actor Actor, payload dto.ProjectCreateRequest, images []*multipart.FileHeader) (dto.ProjectResponse, error) {
	ctx, span := s.tracer.Start(ctx, "project.create")
	defer span.End()
	span.SetAttributes(attribute.Int("project.image_count", len(images)))

	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, err
	}

	category := strings.ToLower(strings.TrimSpace(payload.Category))
	if !models.IsValidCategory(category) {
		return dto.ProjectResponse{}, ErrInvalidCategory
	}

	// Every image is validated before the first byte reaches the provider.
	buffered, err := s.validateImages(images)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "image validation failed")
		return dto.ProjectResponse{}, err
	}

	// The relay loop is all-or-nothing for the request: a failure on image k
	// aborts without rolling back images 1..k-1 already sent to the provider.
	records, err := s.relayImages(ctx, buffered, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "image relay failed")
		return dto.ProjectResponse{}, err
	}

	project := models.Project{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		Category:    category,
		Materials:   strings.TrimSpace(s.sanitizer.Sanitize(payload.Materials)),
		Inspiration: strings.TrimSpace(s.sanitizer.Sanitize(payload.Inspiration)),
		Status:      models.ProjectStatusPending,
		UserID:      actor.ID,
		Images:      records,
	}

	if err := s.repo.Create(ctx, &project); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.ProjectResponse{}, err
	}

	observability.ProjectSubmissions().WithLabelValues(category).Inc()
	span.SetStatus(codes.Ok, "created")

	if s.activity != nil {
		s.activity.RecordAction(ctx, actor, ActionProjectSubmit, "project", &project.ID, project.Title, map[string]interface{}{
			"project_id": project.ID,
			"category":   category,
			"images":     len(records),
		})
	}

	return dto.NewProjectResponse(project), nil
}

func (s *projectService) Update(ctx context.Context, actor Actor, id uint, payload dto.ProjectUpdateRequest, images []*multipart.FileHeader) (dto.ProjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, err
	}

	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	if project.UserID != actor.ID {
		return dto.ProjectResponse{}, ErrNotProjectOwner
	}

	if payload.Title != nil {
		project.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		project.Description = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
	}
	if payload.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*payload.Category))
		if !models.IsValidCategory(category) {
			return dto.ProjectResponse{}, ErrInvalidCategory
		}
		project.Category = category
	}
	if payload.Materials != nil {
		project.Materials = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Materials))
	}
	if payload.Inspiration != nil {
		project.Inspiration = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Inspiration))
	}

	if len(images) > 0 {
		if len(project.Images)+len(images) > s.maxImages {
			return dto.ProjectResponse{}, ErrTooManyImages
		}

		buffered, err := s.validateAppendedImages(images)
		if err != nil {
			return dto.ProjectResponse{}, err
		}

		records, err := s.relayImages(ctx, buffered, len(project.Images))
		if err != nil {
			return dto.ProjectResponse{}, err
		}
		project.Images = append(project.Images, records...)
	}

	if err := s.repo.Update(ctx, &project); err != nil {
		return dto.ProjectResponse{}, err
	}

	if s.activity != nil {
		s.activity.RecordAction(ctx, actor, ActionProjectUpdate, "project", &project.ID, project.Title, map[string]interface{}{
			"project_id": project.ID,
		})
	}

	return dto.NewProjectResponse(project), nil
}

func (s *projectService) ListByOwner(ctx context.Context, ownerID uint) ([]dto.ProjectResponse, error) {
	projects, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		responses = append(responses, dto.NewProjectResponse(project))
	}
	return responses, nil
}

func (s *projectService) Get(ctx context.Context, actor Actor, id uint) (dto.ProjectResponse, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	if project.UserID != actor.ID && actor.Role != models.RoleAdmin {
		return dto.ProjectResponse{}, ErrNotProjectOwner
	}

	return dto.NewProjectResponse(project), nil
}

func (s *projectService) Approve(ctx context.Context, id uint, actor Actor) (dto.ProjectResponse, error) {
	return s.moderate(ctx, id, models.ProjectStatusApproved, "", actor)
}

func (s *projectService) Reject(ctx context.Context, id uint, reason string, actor Actor) (dto.ProjectResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return dto.ProjectResponse{}, ErrReasonRequired
	}
	return s.moderate(ctx, id, models.ProjectStatusRejected, reason, actor)
}

// moderate performs the single modelled transition pending -> approved|rejected.
func (s *projectService) moderate(ctx context.Context, id uint, status, reason string, actor Actor) (dto.ProjectResponse, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	if project.Status != models.ProjectStatusPending {
		return dto.ProjectResponse{}, ErrAlreadyReviewed
	}

	reviewedAt := s.now()
	updates := map[string]interface{}{
		"status":      status,
		"reviewed_at": reviewedAt,
	}

	action := ActionProjectApproval
	if status == models.ProjectStatusApproved {
		updates["approved_at"] = reviewedAt
		project.ApprovedAt = &reviewedAt
	} else {
		updates["rejected_at"] = reviewedAt
		updates["rejection_reason"] = reason
		project.RejectedAt = &reviewedAt
		project.RejectionReason = reason
		action = ActionProjectRejection
	}

	if err := s.repo.UpdateStatus(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	project.Status = status
	project.ReviewedAt = &reviewedAt

	observability.ProjectModerations().WithLabelValues(status).Inc()

	if s.activity != nil {
		metadata := map[string]interface{}{"project_id": id, "status": status}
		if reason != "" {
			metadata["reason"] = reason
		}
		s.activity.RecordAction(ctx, actor, action, "project", &id, project.Title, metadata)
	}

	return dto.NewProjectResponse(project), nil
}

func (s *projectService) Delete(ctx context.Context, id uint, actor Actor) error {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	if s.activity != nil {
		s.activity.RecordAction(ctx, actor, ActionProjectDelete, "project", &id, project.Title, map[string]interface{}{
			"project_id": id,
		})
	}

	return nil
}

func (s *projectService) Gallery(ctx context.Context, req dto.GalleryRequest) (dto.ProjectListResponse, error) {
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category != "" && !models.IsValidCategory(category) {
		return dto.ProjectListResponse{}, ErrInvalidCategory
	}

	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize)

	projects, total, err := s.repo.ListApproved(ctx, repository.GalleryFilter{
		Category: category,
		Search:   req.Search,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return dto.ProjectListResponse{}, err
	}

	items := make([]dto.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		items = append(items, dto.NewProjectResponse(project))
	}

	pagination := dto.PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: 1,
	}
	if pageSize > 0 {
		pagination.TotalPages = totalPages(total, pageSize)
	}

	return dto.ProjectListResponse{Items: items, Pagination: pagination}, nil
}

func (s *projectService) GalleryDetail(ctx context.Context, id uint) (dto.ProjectResponse, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	if project.Status != models.ProjectStatusApproved {
		return dto.ProjectResponse{}, ErrProjectNotFound
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.logger.Warn().Err(err).Uint("project_id", id).Msg("failed to bump view counter")
	} else {
		project.Views++
	}

	return dto.NewProjectResponse(project), nil
}

func (s *projectService) Categories(ctx context.Context) ([]dto.CategoryCount, error) {
	counts, err := s.repo.CountApprovedByCategory(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.CategoryCount, 0, len(models.KnownCategories))
	for _, category := range models.KnownCategories {
		result = append(result, dto.CategoryCount{Category: category, Count: counts[category]})
	}
	return result, nil
}

// validateImages enforces the per-request count ceiling, the per-file size
// ceiling and the image-only content-type gate before any relay call is made.
func (s *projectService) validateImages(files []*multipart.FileHeader) ([]bufferedImage, error) {
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	if len(files) > s.maxImages {
		return nil, ErrTooManyImages
	}
	return s.bufferAndSniff(files)
}

func (s *projectService) validateAppendedImages(files []*multipart.FileHeader) ([]bufferedImage, error) {
	return s.bufferAndSniff(files)
}

func (s *projectService) bufferAndSniff(files []*multipart.FileHeader) ([]bufferedImage, error) {
	buffered := make([]bufferedImage, 0, len(files))
	for _, file := range files {
		if file.Size > s.maxBytes {
			observability.ImageRejected().WithLabelValues("size").Inc()
			return nil, fmt.Errorf("%s: %w", file.Filename, ErrImageTooLarge)
		}

		handle, err := file.Open()
		if err != nil {
			return nil, err
		}

		buf := bytes.NewBuffer(nil)
		_, err = io.Copy(buf, io.LimitReader(handle, s.maxBytes+1))
		handle.Close()
		if err != nil {
			return nil, err
		}
		if int64(buf.Len()) > s.maxBytes {
			observability.ImageRejected().WithLabelValues("size").Inc()
			return nil, fmt.Errorf("%s: %w", file.Filename, ErrImageTooLarge)
		}

		if !strings.HasPrefix(mimetype.Detect(buf.Bytes()).String(), "image/") {
			observability.ImageRejected().WithLabelValues("type").Inc()
			return nil, fmt.Errorf("%s: %w", file.Filename, ErrUnsupportedImageType)
		}

		buffered = append(buffered, bufferedImage{name: file.Filename, data: buf.Bytes()})
	}
	return buffered, nil
}

func (s *projectService) relayImages(ctx context.Context, images []bufferedImage, startPosition int) ([]models.ProjectImage, error) {
	records := make([]models.ProjectImage, 0, len(images))
	for i, image := range images {
		asset, err := s.host.Upload(ctx, image.name, bytes.NewReader(image.data))
		if err != nil {
			observability.ImageRejected().WithLabelValues("provider").Inc()
			s.logger.Error().Err(err).Str("file", image.name).Int("index", i).Msg("image relay failed")
			return nil, err
		}

		size := asset.SizeBytes
		if size == 0 {
			size = int64(len(image.data))
		}

		records = append(records, models.ProjectImage{
			URL:       asset.URL,
			AssetID:   asset.AssetID,
			FileName:  image.name,
			SizeBytes: size,
			Position:  startPosition + i,
		})
	}
	return records, nil
}

func totalPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}
