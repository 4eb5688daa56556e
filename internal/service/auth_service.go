package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/folio-go-api/internal/dto"
	"github.com/noah-isme/folio-go-api/internal/models"
	"github.com/noah-isme/folio-go-api/internal/repository"
)

const bcryptCost = 12

var (
	// ErrInvalidCredentials covers both unknown accounts and bad passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrPendingApproval indicates the student account awaits administrator approval.
	ErrPendingApproval = errors.New("account is pending administrator approval")
	// ErrDuplicateAccount indicates the email or student number is already taken.
	ErrDuplicateAccount = errors.New("an account with this email or student number already exists")
	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("account not found")
)

// RoleMismatchError is returned when the stored role differs from the claimed
// one. The message deliberately names the true role.
type RoleMismatchError struct {
	ActualRole string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("this account is registered as %s, please sign in with the %s form", e.ActualRole, e.ActualRole)
}

// AuthService registers accounts and issues session tokens.
type AuthService interface {
	StudentSignup(ctx context.Context, payload dto.StudentSignupRequest) (dto.AuthResponse, error)
	AdminSignup(ctx context.Context, payload dto.AdminSignupRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	CurrentUser(ctx context.Context, id uint) (dto.UserResponse, error)
}

type authService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	activity  ActivityRecorder
	secret    []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the credential and session issuer.
func NewAuthService(repo repository.UserRepository, validator *validator.Validate, activity ActivityRecorder, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * 24 * time.Hour
	}
	return &authService{
		repo:      repo,
		validator: validator,
		activity:  activity,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) StudentSignup(ctx context.Context, payload dto.StudentSignupRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	department := strings.ToLower(strings.TrimSpace(payload.Department))
	if !models.IsValidDepartment(department) {
		return dto.AuthResponse{}, fmt.Errorf("unknown department %q", payload.Department)
	}

	email := normalizeEmail(payload.Email)
	studentNumber := strings.TrimSpace(payload.StudentNumber)

	taken, err := s.repo.ExistsByEmailOrStudentNumber(ctx, email, studentNumber)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	if taken {
		return dto.AuthResponse{}, ErrDuplicateAccount
	}

	hash, err := hashPassword(payload.Password)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		FirstName:     strings.TrimSpace(payload.FirstName),
		LastName:      strings.TrimSpace(payload.LastName),
		Email:         email,
		PasswordHash:  hash,
		Role:          models.RoleStudent,
		IsApproved:    false,
		StudentNumber: &studentNumber,
		Department:    department,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	s.recordSignup(ctx, user, ActionStudentSignup)

	return s.issueSession(user)
}

func (s *authService) AdminSignup(ctx context.Context, payload dto.AdminSignupRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := normalizeEmail(payload.Email)

	taken, err := s.repo.ExistsAdminByEmail(ctx, email)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	if taken {
		return dto.AuthResponse{}, ErrDuplicateAccount
	}

	hash, err := hashPassword(payload.Password)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		FirstName:    strings.TrimSpace(payload.FirstName),
		LastName:     strings.TrimSpace(payload.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsApproved:   true,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	s.recordSignup(ctx, user, ActionAdminSignup)

	return s.issueSession(user)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.repo.GetByEmail(ctx, normalizeEmail(payload.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	claimedRole := strings.ToLower(strings.TrimSpace(payload.Role))
	if user.Role != claimedRole {
		return dto.AuthResponse{}, &RoleMismatchError{ActualRole: user.Role}
	}

	if !user.IsApproved {
		return dto.AuthResponse{}, ErrPendingApproval
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)) != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	response, err := s.issueSession(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	if s.activity != nil {
		s.activity.RecordAction(ctx, Actor{
			ID:        user.ID,
			Role:      user.Role,
			FirstName: user.FirstName,
			FullName:  user.FullName(),
		}, ActionLogin, "session", nil, "", nil)
	}

	return response, nil
}

func (s *authService) CurrentUser(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) recordSignup(ctx context.Context, user models.User, action string) {
	if s.activity == nil {
		return
	}
	s.activity.RecordAction(ctx, Actor{
		ID:        user.ID,
		Role:      user.Role,
		FirstName: user.FirstName,
		FullName:  user.FullName(),
	}, action, "account", &user.ID, "", nil)
}

// issueSession signs a token binding account id and role for the session TTL.
func (s *authService) issueSession(user models.User) (dto.AuthResponse, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": user.Role,
		"iat":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign session token")
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{User: dto.NewUserResponse(user), Token: token}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
