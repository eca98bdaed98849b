package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ApplicationStatus is the hiring state of an application.
type ApplicationStatus string

// Application statuses
const (
	ApplicationApplied  ApplicationStatus = "APPLIED"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
	ApplicationOffered  ApplicationStatus = "OFFERED"
)

// ParseApplicationStatus validates a raw status string.
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	switch s := ApplicationStatus(raw); s {
	case ApplicationApplied, ApplicationAccepted, ApplicationRejected, ApplicationOffered:
		return s, true
	}
	return "", false
}

// Proposal is the free-form offer payload exchanged between student and employer.
type Proposal struct {
	Message     string `json:"message,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	SalaryOffer string `json:"salary_offer,omitempty"`
}

// Application represents a student's application to a job
type Application struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	JobID uint `gorm:"not null;uniqueIndex:idx_application_student_job" json:"job_id"`
	Job   Job  `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE" json:"job,omitempty"`

	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_student_job" json:"student_id"`
	Student   *Profile  `gorm:"foreignKey:StudentID;references:ID;constraint:OnDelete:CASCADE" json:"student,omitempty"`

	Status           ApplicationStatus            `gorm:"type:text;not null;default:'APPLIED';index" json:"status"`
	Proposal         datatypes.JSONType[Proposal] `gorm:"type:jsonb" json:"proposal"`
	PortfolioVersion int                          `gorm:"not null;default:0" json:"portfolio_version"`

	SubmittedAt time.Time  `json:"submitted_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	DeclinedAt  *time.Time `json:"declined_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Transition moves the application to another status. companyOwnerID is the owner of
// the company that posted the job.
//
// The employer decides an APPLIED application, may withdraw an offer the student has
// not answered, and may re-offer after its own rejection. Only the student turns an
// offer into ACCEPTED or REJECTED. ACCEPTED and a student's decline are final.
func (a *Application) Transition(actor Session, companyOwnerID uuid.UUID, to ApplicationStatus, now time.Time) error {
	if _, ok := ParseApplicationStatus(string(to)); !ok || to == ApplicationApplied {
		return fmt.Errorf("%w: cannot move to %q", ErrIllegalTransition, to)
	}

	switch {
	case actor.Role == RoleCompanyHR && actor.UserID == companyOwnerID:
		if !a.employerMayMove(to) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, a.Status, to)
		}
	case actor.Role == RoleStudent && actor.UserID == a.StudentID:
		if to != ApplicationAccepted && to != ApplicationRejected {
			return ErrNotPermitted
		}
		if a.Status != ApplicationOffered {
			return fmt.Errorf("%w: only an offer can be answered", ErrIllegalTransition)
		}
		if to == ApplicationRejected {
			a.DeclinedAt = &now
		}
	default:
		return ErrNotPermitted
	}

	a.Status = to
	if to == ApplicationAccepted {
		a.AcceptedAt = &now
	}
	return nil
}

func (a *Application) employerMayMove(to ApplicationStatus) bool {
	switch a.Status {
	case ApplicationApplied:
		return true
	case ApplicationOffered:
		return to == ApplicationRejected
	case ApplicationRejected:
		return to == ApplicationOffered && a.DeclinedAt == nil
	}
	return false
}
