package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/models"
	"github.com/noah-isme/folio-go-api/internal/repository"
)

var (
	// ErrStudentNotFound indicates the target account does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrNotAStudent indicates the target account is not a student.
	ErrNotAStudent = errors.New("target account is not a student")
)

// AdminStudentService manages student approval and removal.
type AdminStudentService interface {
	Approve(ctx context.Context, id uint, actor Actor) (dto.UserResponse, error)
	ListPending(ctx context.Context) ([]dto.UserResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type adminStudentService struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
	activity ActivityRecorder
	logger   zerolog.Logger
}

// NewAdminStudentService constructs the admin student service.
func NewAdminStudentService(users repository.UserRepository, projects repository.ProjectRepository, activity ActivityRecorder, logger zerolog.Logger) AdminStudentService {
	return &adminStudentService{
		users:    users,
		projects: projects,
		activity: activity,
		logger:   logger.With().Str("component", "admin_student_service").Logger(),
	}
}

// Approve flips is_approved exactly once. Re-approving an already-approved
// student is a silent no-op.
func (s *adminStudentService) Approve(ctx context.Context, id uint, actor Actor) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrStudentNotFound
		}
		return dto.UserResponse{}, err
	}

	if user.Role != models.RoleStudent {
		return dto.UserResponse{}, ErrNotAStudent
	}

	if user.IsApproved {
		return dto.NewUserResponse(user), nil
	}

	if err := s.users.SetApproved(ctx, id); err != nil {
		return dto.UserResponse{}, err
	}
	user.IsApproved = true

	if s.activity != nil {
		s.activity.RecordAction(ctx, actor, ActionStudentApproval, "student", &id, user.FullName(), map[string]interface{}{
			"student_id": id,
		})
	}

	return dto.NewUserResponse(user), nil
}

func (s *adminStudentService) ListPending(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.ListPendingStudents(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}
	return responses, nil
}

// Delete removes the student's projects first, then the account. The two
// steps are independent writes with no transaction; a failure in between
// leaves partial state.
func (s *adminStudentService) Delete(ctx context.Context, id uint, actor Actor) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	if user.Role != models.RoleStudent {
		return ErrNotAStudent
	}

	if err := s.projects.DeleteByOwner(ctx, id); err != nil {
		s.logger.Error().Err(err).Uint("student_id", id).Msg("failed to delete student projects")
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	if s.activity != nil {
		s.activity.RecordAction(ctx, actor, ActionStudentDeletion, "student", &id, user.FullName(), map[string]interface{}{
			"student_id": id,
		})
	}

	return nil
}
