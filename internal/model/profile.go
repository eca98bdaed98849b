package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of principal roles.
type Role string

// Roles
const (
	RoleAdmin           Role = "ADMIN"
	RoleFacultyApprover Role = "FACULTY_APPROVER"
	RoleStudent         Role = "STUDENT"
	RoleCompanyHR       Role = "COMPANY_HR"
)

// NormalizeRole maps a raw role string onto a Role. The legacy "user" value is an
// alias for STUDENT.
func NormalizeRole(raw string) (Role, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch Role(normalized) {
	case RoleAdmin, RoleFacultyApprover, RoleStudent, RoleCompanyHR:
		return Role(normalized), nil
	case "USER":
		return RoleStudent, nil
	case "COMPANY", "HR":
		return RoleCompanyHR, nil
	case "APPROVER", "FACULTY":
		return RoleFacultyApprover, nil
	}
	return "", fmt.Errorf("unknown role: %q", raw)
}

// LandingPath is where a freshly authenticated principal of the role is sent.
func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleFacultyApprover:
		return "/approver/portfolios"
	case RoleCompanyHR:
		return "/company/dashboard"
	default:
		return "/student/dashboard"
	}
}

// Profile is the authentication principal and its profile.
type Profile struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username        string    `gorm:"type:text;uniqueIndex" json:"username"`
	Email           *string   `gorm:"type:text;uniqueIndex" json:"email"`
	Password        string    `gorm:"type:text" json:"-"`
	GoogleID        *string   `gorm:"type:text;uniqueIndex" json:"-"`
	Role            Role      `gorm:"type:text;not null;default:'STUDENT'" json:"role"`
	VerifiedStudent bool      `gorm:"default:false" json:"verified_student"`
	EditableProfileInfo
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EditableProfileInfo is the part of a profile its owner may change.
type EditableProfileInfo struct {
	DisplayName string  `gorm:"type:text" json:"display_name"`
	Tel         *string `gorm:"type:text" json:"tel"`
	Faculty     string  `gorm:"type:text" json:"faculty"`
	Major       string  `gorm:"type:text" json:"major"`
}

// Session builds the explicit session passed to workflow calls.
func (p Profile) Session() Session {
	name := p.DisplayName
	if name == "" {
		name = p.Username
	}
	return Session{UserID: p.ID, Role: p.Role, DisplayName: name}
}

// Session is the authenticated caller of a workflow operation.
type Session struct {
	UserID      uuid.UUID `json:"user_id"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"display_name"`
}

// Is reports whether the session has one of the roles.
func (s Session) Is(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// CanReviewPortfolios reports whether the session may approve portfolios.
func (s Session) CanReviewPortfolios() bool {
	return s.Is(RoleAdmin, RoleFacultyApprover)
}

// AdminWhitelist gates admin account creation and login by email.
type AdminWhitelist struct {
	Email     string    `gorm:"type:text;primaryKey" json:"email"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse is returned by every login and registration endpoint.
type LoginResponse struct {
	User        Profile `json:"user"`
	AccessToken string  `json:"access_token"`
	Landing     string  `json:"landing"`
}

// GoogleUserInfo is the payload of the Google userinfo endpoint.
type GoogleUserInfo struct {
	GID       string `json:"id"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
	Email     string `json:"email"`
}
