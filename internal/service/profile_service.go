package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/repository"
)

// ProfileService stores and serves the free-form student profile sub-record.
type ProfileService interface {
	Save(ctx context.Context, actor Actor, payload dto.ProfileRequest) (dto.ProfileResponse, error)
	Get(ctx context.Context, userID uint) (dto.ProfileResponse, error)
}

type profileService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	activity  ActivityRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProfileService constructs the profile service.
func NewProfileService(repo repository.UserRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) ProfileService {
	return &profileService{
		repo:      repo,
		validator: validator,
		activity:  activity,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "profile_service").Logger(),
		now:       time.Now,
	}
}

// Save replaces the profile wholesale. There is no field-level merge.
func (s *profileService) Save(ctx context.Context, actor Actor, payload dto.ProfileRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, err
	}

	skills := make([]interface{}, 0, len(payload.Skills))
	for _, skill := range payload.Skills {
		trimmed := strings.TrimSpace(s.sanitizer.Sanitize(skill))
		if trimmed != "" {
			skills = append(skills, trimmed)
		}
	}

	links := map[string]interface{}{}
	for platform, url := range payload.SocialLinks {
		links[strings.ToLower(strings.TrimSpace(platform))] = strings.TrimSpace(url)
	}

	profile := datatypes.JSONMap{
		"bio":            strings.TrimSpace(s.sanitizer.Sanitize(payload.Bio)),
		"skills":         skills,
		"specialization": strings.TrimSpace(s.sanitizer.Sanitize(payload.Specialization)),
		"contact":        strings.TrimSpace(payload.Contact),
		"social_links":   links,
	}

	updatedAt := s.now()
	updates := map[string]interface{}{
		"profile":            profile,
		"profile_updated_at": updatedAt,
	}

	if err := s.repo.ReplaceProfile(ctx, actor.ID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, err
	}

	if s.activity != nil {
		s.activity.RecordAction(ctx, actor, ActionProfileUpdate, "profile", &actor.ID, "", nil)
	}

	return dto.ProfileResponse{
		Profile:   map[string]interface{}(profile),
		UpdatedAt: &updatedAt,
	}, nil
}

func (s *profileService) Get(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, err
	}

	response := dto.ProfileResponse{UpdatedAt: user.ProfileUpdatedAt}
	if user.Profile != nil {
		response.Profile = map[string]interface{}(user.Profile)
	} else {
		response.Profile = map[string]interface{}{}
	}
	return response, nil
}
