package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PortfolioStatus is the review state of a portfolio.
type PortfolioStatus string

// Portfolio statuses
const (
	PortfolioDraft            PortfolioStatus = "DRAFT"
	PortfolioSubmitted        PortfolioStatus = "SUBMITTED"
	PortfolioApproved         PortfolioStatus = "APPROVED"
	PortfolioChangesRequested PortfolioStatus = "CHANGES_REQUESTED"
	PortfolioRejected         PortfolioStatus = "REJECTED"
)

// Visibility controls whether employers can discover an approved portfolio.
type Visibility string

// Visibilities
const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// SubmissionThreshold is the minimum completion a portfolio needs to be submitted.
const SubmissionThreshold = 0.8

// Skill is one portfolio skill entry.
type Skill struct {
	Name     string `json:"name"`
	Level    string `json:"level,omitempty"`
	Category string `json:"category,omitempty"`
}

// Project is one portfolio project entry.
type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	URL          string   `json:"url,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// Education is one portfolio education entry.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartYear   int    `json:"start_year,omitempty"`
	EndYear     int    `json:"end_year,omitempty"`
}

// Certificate is one portfolio certificate entry.
type Certificate struct {
	Name     string `json:"name"`
	Issuer   string `json:"issuer,omitempty"`
	IssuedAt string `json:"issued_at,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Language is one spoken language entry.
type Language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

// MaxRate is the largest rate a numeric(12,2) column holds.
const MaxRate = 9999999999.99

// Portfolio is a student's self-description submitted for faculty approval.
type Portfolio struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Student   *Profile  `gorm:"foreignKey:StudentID;references:ID;constraint:OnDelete:CASCADE" json:"student,omitempty"`

	Skills       datatypes.JSONSlice[Skill]       `gorm:"type:jsonb" json:"skills"`
	Projects     datatypes.JSONSlice[Project]     `gorm:"type:jsonb" json:"projects"`
	Education    datatypes.JSONSlice[Education]   `gorm:"type:jsonb" json:"education"`
	Certificates datatypes.JSONSlice[Certificate] `gorm:"type:jsonb" json:"certificates"`
	Languages    datatypes.JSONSlice[Language]    `gorm:"type:jsonb" json:"languages"`

	Availability  string     `gorm:"type:text" json:"availability"`
	ExpectedRate  *float64   `gorm:"type:numeric(12,2)" json:"expected_rate"`
	FreelanceRate *float64   `gorm:"type:numeric(12,2)" json:"freelance_rate"`
	Visibility    Visibility `gorm:"type:text;not null;default:'PUBLIC'" json:"visibility"`

	Status      PortfolioStatus `gorm:"type:text;not null;default:'DRAFT';index" json:"status"`
	Version     int             `gorm:"not null;default:0" json:"version"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	ApproverID  *uuid.UUID      `gorm:"type:uuid" json:"approver_id,omitempty"`
	ApprovedAt  *time.Time      `json:"approved_at,omitempty"`

	ResumeFileID *int   `json:"resume_file_id,omitempty"`
	ResumeFile   *File  `gorm:"foreignKey:ResumeFileID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
	ResumeText   string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Completion is the fraction of the six completeness checks the portfolio passes.
func (p *Portfolio) Completion() float64 {
	checks := []bool{
		len(p.Skills) > 0,
		len(p.Projects) > 0,
		len(p.Education) > 0,
		len(p.Languages) > 0,
		strings.TrimSpace(p.Availability) != "",
		p.ExpectedRate != nil,
	}
	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return float64(passed) / float64(len(checks))
}

// Transition moves the portfolio to another status on behalf of actor. It is the
// only place portfolio statuses change.
func (p *Portfolio) Transition(actor Session, to PortfolioStatus, now time.Time) error {
	owner := actor.UserID == p.StudentID && actor.Role == RoleStudent

	switch to {
	case PortfolioDraft:
		if !owner {
			return ErrNotPermitted
		}
	case PortfolioSubmitted:
		if !owner {
			return ErrNotPermitted
		}
		if p.Status != PortfolioDraft && p.Status != PortfolioChangesRequested {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, p.Status, to)
		}
		p.SubmittedAt = &now
		p.Version++
	case PortfolioApproved, PortfolioChangesRequested, PortfolioRejected:
		if !actor.CanReviewPortfolios() {
			return ErrNotPermitted
		}
		if p.Status != PortfolioSubmitted {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, p.Status, to)
		}
		if to == PortfolioApproved {
			approver := actor.UserID
			p.ApproverID = &approver
			p.ApprovedAt = &now
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, to)
	}

	p.Status = to
	return nil
}

// Discoverable reports whether employers may see the portfolio. An unset visibility
// is PUBLIC, as in the store.
func (p *Portfolio) Discoverable() bool {
	return p.Status == PortfolioApproved && (p.Visibility == VisibilityPublic || p.Visibility == "")
}

// Validate checks the typed items before they reach the store.
func (p *Portfolio) Validate() error {
	for i, s := range p.Skills {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: skills[%d].name is required", ErrInvalidPortfolio, i)
		}
	}
	for i, pr := range p.Projects {
		if strings.TrimSpace(pr.Title) == "" {
			return fmt.Errorf("%w: projects[%d].title is required", ErrInvalidPortfolio, i)
		}
	}
	for i, e := range p.Education {
		if strings.TrimSpace(e.Institution) == "" {
			return fmt.Errorf("%w: education[%d].institution is required", ErrInvalidPortfolio, i)
		}
		if e.StartYear != 0 && e.EndYear != 0 && e.EndYear < e.StartYear {
			return fmt.Errorf("%w: education[%d] ends before it starts", ErrInvalidPortfolio, i)
		}
	}
	for i, c := range p.Certificates {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: certificates[%d].name is required", ErrInvalidPortfolio, i)
		}
	}
	for i, l := range p.Languages {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("%w: languages[%d].name is required", ErrInvalidPortfolio, i)
		}
	}
	for _, rate := range []*float64{p.ExpectedRate, p.FreelanceRate} {
		if rate == nil {
			continue
		}
		if *rate < 0 {
			return fmt.Errorf("%w: rates must not be negative", ErrInvalidPortfolio)
		}
		if *rate > MaxRate {
			return fmt.Errorf("%w: rates must not exceed %.2f", ErrInvalidPortfolio, MaxRate)
		}
	}
	switch p.Visibility {
	case "", VisibilityPublic, VisibilityPrivate:
	default:
		return fmt.Errorf("%w: unknown visibility %q", ErrInvalidPortfolio, p.Visibility)
	}
	return nil
}

// BeforeSave validates items at the store boundary.
func (p *Portfolio) BeforeSave(_ *gorm.DB) error {
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	return p.Validate()
}

// ParseRate coerces a JSON rate value into a decimal. Numbers and numeric strings are
// accepted, null and empty strings yield nil.
func ParseRate(raw json.RawMessage) (*float64, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: rate is not valid JSON", ErrInvalidPortfolio)
	}

	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: rate %q is not a number", ErrInvalidPortfolio, v)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("%w: rate must be a number", ErrInvalidPortfolio)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: rate must be finite", ErrInvalidPortfolio)
	}
	return &f, nil
}
