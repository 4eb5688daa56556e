package dto

import (
	"time"

	"github.com/noah-isme/folio-go-api/internal/models"
)

// StudentSignupRequest carries the payload for student registration.
type StudentSignupRequest struct {
	FirstName     string `json:"firstName" validate:"required,max=128"`
	LastName      string `json:"lastName" validate:"required,max=128"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	StudentNumber string `json:"studentId" validate:"required,max=64"`
	Department    string `json:"department" validate:"required"`
}

// AdminSignupRequest carries the payload for administrator registration.
type AdminSignupRequest struct {
	FirstName string `json:"firstName" validate:"required,max=128"`
	LastName  string `json:"lastName" validate:"required,max=128"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest authenticates an existing account for the claimed role.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=student admin"`
}

// UserResponse is the external representation of an account. The password
// hash never appears here.
type UserResponse struct {
	ID               uint                   `json:"id"`
	FirstName        string                 `json:"first_name"`
	LastName         string                 `json:"last_name"`
	Email            string                 `json:"email"`
	Role             string                 `json:"role"`
	IsApproved       bool                   `json:"is_approved"`
	StudentNumber    string                 `json:"student_number,omitempty"`
	Department       string                 `json:"department,omitempty"`
	Profile          map[string]interface{} `json:"profile,omitempty"`
	ProfileUpdatedAt *time.Time             `json:"profile_updated_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// AuthResponse bundles the account with a freshly issued session token.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// NewUserResponse maps an account model to its external representation.
func NewUserResponse(user models.User) UserResponse {
	response := UserResponse{
		ID:               user.ID,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Email:            user.Email,
		Role:             user.Role,
		IsApproved:       user.IsApproved,
		Department:       user.Department,
		ProfileUpdatedAt: user.ProfileUpdatedAt,
		CreatedAt:        user.CreatedAt,
	}
	if user.StudentNumber != nil {
		response.StudentNumber = *user.StudentNumber
	}
	if user.Profile != nil {
		response.Profile = map[string]interface{}(user.Profile)
	}
	return response
}
