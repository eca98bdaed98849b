package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/notify"
)

// ApplicationService runs the hiring workflow between students and employers.
type ApplicationService struct {
	Deps
}

// Apply creates an APPLIED application of the calling student to an OPEN job.
func (s *ApplicationService) Apply(ctx context.Context, session model.Session, jobID uint) (*model.Application, error) {
	const op = "application.Apply"

	if !session.Is(model.RoleStudent) {
		return nil, apperr.Forbidden(op, "Only students can apply to jobs")
	}

	var job model.Job
	if err := s.DB.WithContext(ctx).Preload("Company").First(&job, jobID).Error; err != nil {
		return nil, database.TranslateError(op, "Job not found", err)
	}
	if job.Status != model.JobStatusOpen {
		return nil, apperr.Validation(op, "This job is not accepting applications")
	}

	var duplicates int64
	if err := s.DB.WithContext(ctx).Model(&model.Application{}).
		Where("job_id = ? AND student_id = ?", jobID, session.UserID).
		Count(&duplicates).Error; err != nil {
		return nil, database.TranslateError(op, "", err)
	}
	if duplicates > 0 {
		return nil, apperr.E(apperr.CodeConflict, op, "You already applied to this job", nil)
	}

	version, err := s.approvedVersion(ctx, session)
	if err != nil {
		return nil, database.TranslateError(op, "", err)
	}

	app := model.Application{
		JobID:            jobID,
		StudentID:        session.UserID,
		Status:           model.ApplicationApplied,
		Proposal:         datatypes.NewJSONType(model.Proposal{}),
		PortfolioVersion: version,
		SubmittedAt:      s.now(),
	}
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(&app).Error; err != nil {
		// a concurrent apply loses on the unique index
		if database.IsUniqueViolation(err) {
			return nil, apperr.E(apperr.CodeConflict, op, "You already applied to this job", err)
		}
		return nil, database.TranslateError(op, "", err)
	}
	app.Job = job

	s.publish(ctx, notify.UserTopic(job.Company.OwnerID), notify.KindApplicationCreated, app.ID)
	return &app, nil
}

// approvedVersion is the version of the caller's latest APPROVED portfolio, 0 if none.
func (s *ApplicationService) approvedVersion(ctx context.Context, session model.Session) (int, error) {
	var p model.Portfolio
	err := s.DB.WithContext(ctx).
		Where("student_id = ? AND status = ?", session.UserID, model.PortfolioApproved).
		Order("approved_at DESC, id DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return p.Version, nil
}

// UpdateStatus is the employer's review of an application.
func (s *ApplicationService) UpdateStatus(ctx context.Context, session model.Session, id uint, rawStatus string) (*model.Application, error) {
	const op = "application.UpdateStatus"

	status, ok := model.ParseApplicationStatus(strings.ToUpper(strings.TrimSpace(rawStatus)))
	if !ok {
		return nil, apperr.Validation(op, "Status must be one of ACCEPTED, REJECTED or OFFERED")
	}
	if !session.Is(model.RoleCompanyHR) {
		return nil, apperr.Forbidden(op, "Only employers can review applications")
	}
	app, err := s.transition(ctx, op, session, id, status, nil)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.UserTopic(app.StudentID), notify.KindApplicationStatus, app.ID)
	return app, nil
}

// AcceptOffer accepts an OFFERED application on behalf of its student and stores the
// agreed proposal.
func (s *ApplicationService) AcceptOffer(ctx context.Context, session model.Session, id uint, proposal model.Proposal) (*model.Application, error) {
	const op = "application.AcceptOffer"

	app, err := s.transition(ctx, op, session, id, model.ApplicationAccepted, &proposal)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.UserTopic(app.Job.Company.OwnerID), notify.KindApplicationStatus, app.ID)
	return app, nil
}

// DeclineOffer turns down an OFFERED application on behalf of its student.
func (s *ApplicationService) DeclineOffer(ctx context.Context, session model.Session, id uint) (*model.Application, error) {
	const op = "application.DeclineOffer"

	app, err := s.transition(ctx, op, session, id, model.ApplicationRejected, nil)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.UserTopic(app.Job.Company.OwnerID), notify.KindApplicationStatus, app.ID)
	return app, nil
}

func (s *ApplicationService) transition(ctx context.Context, op string, session model.Session, id uint, to model.ApplicationStatus, proposal *model.Proposal) (*model.Application, error) {
	var app model.Application
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}).
			Preload("Job.Company").
			First(&app, id).Error; err != nil {
			return err
		}
		if err := app.Transition(session, app.Job.Company.OwnerID, to, s.now()); err != nil {
			return err
		}
		if proposal != nil {
			app.Proposal = datatypes.NewJSONType(*proposal)
		}
		return tx.Omit(clause.Associations).Save(&app).Error
	})
	if err != nil {
		if errors.Is(err, model.ErrNotPermitted) || errors.Is(err, model.ErrIllegalTransition) {
			return nil, transitionError(op, err)
		}
		return nil, database.TranslateError(op, "Application not found", err)
	}
	return &app, nil
}

// ListMine returns the calling student's applications, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, session model.Session) ([]model.Application, error) {
	const op = "application.ListMine"

	if !session.Is(model.RoleStudent) {
		return nil, apperr.Forbidden(op, "Only students have applications")
	}
	apps := []model.Application{}
	err := s.DB.WithContext(ctx).Preload("Job.Company").
		Where("student_id = ?", session.UserID).
		Order("submitted_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, database.TranslateError(op, "", err)
	}
	return apps, nil
}

// ListForCompany returns applications to the caller's jobs, optionally narrowed to one
// job.
func (s *ApplicationService) ListForCompany(ctx context.Context, session model.Session, jobID *uint) ([]model.Application, error) {
	const op = "application.ListForCompany"

	if !session.Is(model.RoleCompanyHR) {
		return nil, apperr.Forbidden(op, "Only employers can list applications")
	}
	company, err := s.companyOf(ctx, session.UserID)
	if err != nil {
		return nil, database.TranslateError(op, "", err)
	}
	apps := []model.Application{}
	if company == nil {
		return apps, nil
	}

	query := s.DB.WithContext(ctx).Preload("Job").Preload("Student").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.company_id = ?", company.ID)
	if jobID != nil {
		query = query.Where("applications.job_id = ?", *jobID)
	}
	if err := query.Order("applications.submitted_at DESC").Find(&apps).Error; err != nil {
		return nil, database.TranslateError(op, "", err)
	}
	return apps, nil
}

// participant loads an application and checks the caller is its student or the owner
// of the job's company.
func (d Deps) participant(ctx context.Context, op string, session model.Session, id uint) (*model.Application, error) {
	var app model.Application
	if err := d.DB.WithContext(ctx).Preload("Job.Company").First(&app, id).Error; err != nil {
		return nil, database.TranslateError(op, "Application not found", err)
	}
	if session.UserID != app.StudentID && session.UserID != app.Job.Company.OwnerID {
		return nil, apperr.Forbidden(op, "You are not part of this application")
	}
	return &app, nil
}
