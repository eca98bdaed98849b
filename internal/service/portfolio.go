package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/notify"
	"github.com/XevilA/spu-nexus-sub000/internal/storage"
)

// PortfolioInput carries the fields a student edits. Absent fields keep their stored
// value; an empty list clears it.
type PortfolioInput struct {
	Skills        []model.Skill       `json:"skills"`
	Projects      []model.Project     `json:"projects"`
	Education     []model.Education   `json:"education"`
	Certificates  []model.Certificate `json:"certificates"`
	Languages     []model.Language    `json:"languages"`
	Availability  *string             `json:"availability"`
	ExpectedRate  json.RawMessage     `json:"expected_rate" swaggertype:"number"`
	FreelanceRate json.RawMessage     `json:"freelance_rate" swaggertype:"number"`
	Visibility    *string             `json:"visibility" example:"PUBLIC"`
}

// apply merges in onto p.
func (in PortfolioInput) apply(p *model.Portfolio) error {
	if in.Skills != nil {
		p.Skills = datatypes.JSONSlice[model.Skill](in.Skills)
	}
	if in.Projects != nil {
		p.Projects = datatypes.JSONSlice[model.Project](in.Projects)
	}
	if in.Education != nil {
		p.Education = datatypes.JSONSlice[model.Education](in.Education)
	}
	if in.Certificates != nil {
		p.Certificates = datatypes.JSONSlice[model.Certificate](in.Certificates)
	}
	if in.Languages != nil {
		p.Languages = datatypes.JSONSlice[model.Language](in.Languages)
	}
	if in.Availability != nil {
		p.Availability = strings.TrimSpace(*in.Availability)
	}
	if len(in.ExpectedRate) > 0 {
		rate, err := model.ParseRate(in.ExpectedRate)
		if err != nil {
			return fmt.Errorf("expected_rate: %w", err)
		}
		p.ExpectedRate = rate
	}
	if len(in.FreelanceRate) > 0 {
		rate, err := model.ParseRate(in.FreelanceRate)
		if err != nil {
			return fmt.Errorf("freelance_rate: %w", err)
		}
		p.FreelanceRate = rate
	}
	if in.Visibility != nil {
		p.Visibility = model.Visibility(strings.ToUpper(strings.TrimSpace(*in.Visibility)))
	}
	return p.Validate()
}

// PortfolioService runs the portfolio review workflow.
type PortfolioService struct {
	Deps
}

// latest returns the authoritative portfolio of a student, nil when there is none.
func latestPortfolio(tx *gorm.DB, studentID uuid.UUID, lock bool) (*model.Portfolio, error) {
	var p model.Portfolio
	q := tx.Where("student_id = ?", studentID).Order("created_at DESC, id DESC")
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// editable returns the student's latest portfolio moved back to DRAFT, or a new draft.
func (s *PortfolioService) editable(tx *gorm.DB, session model.Session) (*model.Portfolio, error) {
	p, err := latestPortfolio(tx, session.UserID, true)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &model.Portfolio{
			StudentID:  session.UserID,
			Status:     model.PortfolioDraft,
			Visibility: model.VisibilityPublic,
		}, nil
	}
	if p.Status != model.PortfolioDraft {
		if err := p.Transition(session, model.PortfolioDraft, s.now()); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *PortfolioService) requireStudent(op string, session model.Session) error {
	if !session.Is(model.RoleStudent) {
		return apperr.Forbidden(op, "Only students have portfolios")
	}
	return nil
}

// SaveDraft upserts the caller's latest portfolio as DRAFT.
func (s *PortfolioService) SaveDraft(ctx context.Context, session model.Session, in PortfolioInput) (*model.Portfolio, error) {
	const op = "portfolio.SaveDraft"

	if err := s.requireStudent(op, session); err != nil {
		return nil, err
	}

	var saved *model.Portfolio
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.editable(tx, session)
		if err != nil {
			return err
		}
		if err := in.apply(p); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return err
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, s.mapError(op, err)
	}
	return saved, nil
}

// Submit saves in and sends the portfolio for approval. It fails without saving when
// the result is less than SubmissionThreshold complete.
func (s *PortfolioService) Submit(ctx context.Context, session model.Session, in PortfolioInput) (*model.Portfolio, error) {
	const op = "portfolio.Submit"

	if err := s.requireStudent(op, session); err != nil {
		return nil, err
	}

	var saved *model.Portfolio
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.editable(tx, session)
		if err != nil {
			return err
		}
		if err := in.apply(p); err != nil {
			return err
		}
		if completion := p.Completion(); completion < model.SubmissionThreshold {
			return apperr.Validation(op, fmt.Sprintf(
				"Portfolio is %.0f%% complete, at least %.0f%% is required to submit",
				completion*100, model.SubmissionThreshold*100))
		}
		if err := p.Transition(session, model.PortfolioSubmitted, s.now()); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return err
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, s.mapError(op, err)
	}

	s.publish(ctx, notify.ApproversTopic, notify.KindPortfolioSubmitted, saved.ID)
	return saved, nil
}

// Review approves a submitted portfolio or requests changes.
func (s *PortfolioService) Review(ctx context.Context, session model.Session, id uint, approved bool) (*model.Portfolio, error) {
	to := model.PortfolioChangesRequested
	if approved {
		to = model.PortfolioApproved
	}
	return s.decide(ctx, "portfolio.Review", session, id, to)
}

// Reject rejects a submitted portfolio.
func (s *PortfolioService) Reject(ctx context.Context, session model.Session, id uint) (*model.Portfolio, error) {
	return s.decide(ctx, "portfolio.Reject", session, id, model.PortfolioRejected)
}

func (s *PortfolioService) decide(ctx context.Context, op string, session model.Session, id uint, to model.PortfolioStatus) (*model.Portfolio, error) {
	if !session.CanReviewPortfolios() {
		return nil, apperr.Forbidden(op, "Only approvers can review portfolios")
	}

	var p model.Portfolio
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
			return err
		}
		if err := p.Transition(session, to, s.now()); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&p).Error
	})
	if err != nil {
		return nil, s.mapError(op, err)
	}

	s.publish(ctx, notify.UserTopic(p.StudentID), notify.KindPortfolioReviewed, p.ID)
	return &p, nil
}

// GetLatest returns a student's latest portfolio. Owners and approvers see every
// status; employers only see approved public portfolios.
func (s *PortfolioService) GetLatest(ctx context.Context, session model.Session, studentID uuid.UUID) (*model.Portfolio, error) {
	const op = "portfolio.GetLatest"

	isOwner := session.UserID == studentID
	if !isOwner && !session.CanReviewPortfolios() && !session.Is(model.RoleCompanyHR) {
		return nil, apperr.Forbidden(op, "You cannot view this portfolio")
	}

	p, err := latestPortfolio(s.DB.WithContext(ctx).Preload("Student"), studentID, false)
	if err != nil {
		return nil, database.TranslateError(op, "", err)
	}
	if p == nil || (!isOwner && !session.CanReviewPortfolios() && !p.Discoverable()) {
		return nil, apperr.NotFound(op, "Portfolio not found")
	}
	return p, nil
}

// ListPending returns submitted portfolios, oldest submission first.
func (s *PortfolioService) ListPending(ctx context.Context, session model.Session) ([]model.Portfolio, error) {
	const op = "portfolio.ListPending"

	if !session.CanReviewPortfolios() {
		return nil, apperr.Forbidden(op, "Only approvers can list pending portfolios")
	}
	portfolios := []model.Portfolio{}
	err := s.DB.WithContext(ctx).Preload("Student").
		Where("status = ?", model.PortfolioSubmitted).
		Order("submitted_at ASC").
		Find(&portfolios).Error
	if err != nil {
		return nil, database.TranslateError(op, "", err)
	}
	return portfolios, nil
}

// ListDiscoverable returns approved public portfolios, optionally those listing a
// skill whose name contains skill.
func (s *PortfolioService) ListDiscoverable(ctx context.Context, session model.Session, skill string) ([]model.Portfolio, error) {
	const op = "portfolio.ListDiscoverable"

	if session.Is(model.RoleStudent) {
		return nil, apperr.Forbidden(op, "Students cannot browse portfolios")
	}
	query := s.DB.WithContext(ctx).Preload("Student").
		Where("status = ? AND visibility = ?", model.PortfolioApproved, model.VisibilityPublic)
	if strings.TrimSpace(skill) != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(portfolios.skills) AS s WHERE s->>'name' ILIKE ?)",
			containsPattern(skill))
	}
	portfolios := []model.Portfolio{}
	if err := query.Order("approved_at DESC").Find(&portfolios).Error; err != nil {
		return nil, database.TranslateError(op, "", err)
	}
	return portfolios, nil
}

// UploadResume stores a PDF resume and attaches it, with its extracted text, to the
// caller's latest portfolio.
func (s *PortfolioService) UploadResume(ctx context.Context, session model.Session, filename string, data []byte) (*model.Portfolio, error) {
	const op = "portfolio.UploadResume"

	if err := s.requireStudent(op, session); err != nil {
		return nil, err
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".pdf" {
		return nil, apperr.Validation(op, fmt.Sprintf("Unsupported file extension: %s", ext))
	}
	if len(data) > storage.MaxResumeBytes {
		return nil, apperr.Validation(op, "File size is larger than 10 MB")
	}

	text, err := storage.ExtractText(data)
	if err != nil {
		s.Log.WithError(err).WithField("user_id", session.UserID).Warn("resume text extraction failed")
	}

	file := model.File{}
	if err := storage.Persist(ctx, s.Storage, &file, data, ".pdf", storage.ResumeObjectPrefix); err != nil {
		return nil, apperr.External(op, "Failed to store resume", err)
	}

	var saved *model.Portfolio
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		p, err := latestPortfolio(tx, session.UserID, true)
		if err != nil {
			return err
		}
		if p == nil {
			p = &model.Portfolio{StudentID: session.UserID, Status: model.PortfolioDraft, Visibility: model.VisibilityPublic}
		}
		p.ResumeFileID = &file.ID
		p.ResumeText = text
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return err
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, s.mapError(op, err)
	}
	return saved, nil
}

// ResumeFile returns the stored resume of a portfolio visible to the caller.
func (s *PortfolioService) ResumeFile(ctx context.Context, session model.Session, studentID uuid.UUID) (model.File, error) {
	const op = "portfolio.ResumeFile"

	p, err := s.GetLatest(ctx, session, studentID)
	if err != nil {
		return model.File{}, err
	}
	if p.ResumeFileID == nil {
		return model.File{}, apperr.NotFound(op, "No resume uploaded")
	}
	var file model.File
	err = s.DB.WithContext(ctx).First(&file, *p.ResumeFileID).Error
	return file, database.TranslateError(op, "File not found", err)
}

func (s *PortfolioService) mapError(op string, err error) error {
	if apperr.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, model.ErrNotPermitted) || errors.Is(err, model.ErrIllegalTransition) || errors.Is(err, model.ErrInvalidPortfolio) {
		return transitionError(op, err)
	}
	return storeError(op, "Portfolio not found", err)
}
