package models

import (
	"time"

	"gorm.io/datatypes"
)

// Roles recognised by the platform.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Departments a student account may belong to.
const (
	DepartmentFashionDesign = "fashion_design"
	DepartmentTextile       = "textile"
	DepartmentAccessories   = "accessories"
	DepartmentIllustration  = "illustration"
	DepartmentGeneral       = "general"
)

// KnownDepartments lists the closed department enum.
var KnownDepartments = []string{
	DepartmentFashionDesign,
	DepartmentTextile,
	DepartmentAccessories,
	DepartmentIllustration,
	DepartmentGeneral,
}

// User represents a student or administrator account.
type User struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	FirstName        string            `gorm:"size:128" json:"first_name"`
	LastName         string            `gorm:"size:128" json:"last_name"`
	Email            string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash     string            `gorm:"size:255;not null" json:"-"`
	Role             string            `gorm:"size:32;not null;default:student" json:"role"`
	IsApproved       bool              `gorm:"not null;default:false" json:"is_approved"`
	StudentNumber    *string           `gorm:"size:64;uniqueIndex" json:"student_number,omitempty"`
	Department       string            `gorm:"size:64" json:"department,omitempty"`
	Profile          datatypes.JSONMap `gorm:"type:json" json:"profile,omitempty"`
	ProfileUpdatedAt *time.Time        `json:"profile_updated_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// FullName joins first and last name for display purposes.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// IsValidDepartment reports whether the value is part of the department enum.
func IsValidDepartment(value string) bool {
	for _, dept := range KnownDepartments {
		if dept == value {
			return true
		}
	}
	return false
}
