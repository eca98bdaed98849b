package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

// CompanyService manages employer records.
type CompanyService struct {
	Deps
}

// Register creates the caller's company and makes the caller COMPANY_HR. A principal
// owns at most one company.
func (s *CompanyService) Register(ctx context.Context, session model.Session, name, domain string) (model.Company, error) {
	const op = "company.Register"

	if !session.Is(model.RoleStudent, model.RoleCompanyHR) {
		return model.Company{}, apperr.Forbidden(op, "Only students or HR accounts can register a company")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Company{}, apperr.Validation(op, "Company name is required")
	}

	company := model.Company{
		OwnerID: session.UserID,
		Name:    name,
		Domain:  strings.ToLower(strings.TrimSpace(domain)),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.Company{}).Where("owner_id = ?", session.UserID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.E(apperr.CodeConflict, op, "You already registered a company", nil)
		}
		if err := tx.Omit("Owner", "Jobs").Create(&company).Error; err != nil {
			return err
		}
		return tx.Model(&model.Profile{}).Where("id = ?", session.UserID).Update("role", model.RoleCompanyHR).Error
	})
	if err != nil {
		if apperr.CodeOf(err) != "" {
			return model.Company{}, err
		}
		return model.Company{}, database.TranslateError(op, "", err)
	}
	return company, nil
}

// Verify sets the verified flag of a company. Admin only.
func (s *CompanyService) Verify(ctx context.Context, session model.Session, companyID string, verified bool) (model.Company, error) {
	const op = "company.Verify"

	if !session.Is(model.RoleAdmin) {
		return model.Company{}, apperr.Forbidden(op, "Only admins can verify companies")
	}

	var company model.Company
	if err := s.DB.WithContext(ctx).First(&company, "id = ?", companyID).Error; err != nil {
		return model.Company{}, database.TranslateError(op, "Company not found", err)
	}

	company.Verified = verified
	if verified {
		now := s.now()
		company.VerifiedAt = &now
	} else {
		company.VerifiedAt = nil
	}
	if err := s.DB.WithContext(ctx).Omit("Owner", "Jobs").Save(&company).Error; err != nil {
		return model.Company{}, database.TranslateError(op, "", err)
	}
	s.invalidateJobs(ctx)
	return company, nil
}

// Mine returns the company owned by the caller.
func (s *CompanyService) Mine(ctx context.Context, session model.Session) (model.Company, error) {
	var company model.Company
	err := s.DB.WithContext(ctx).Preload("Jobs").First(&company, "owner_id = ?", session.UserID).Error
	return company, database.TranslateError("company.Mine", "You have not registered a company", err)
}

// List returns companies for the admin console, optionally filtered by verification.
func (s *CompanyService) List(ctx context.Context, session model.Session, verified *bool) ([]model.Company, error) {
	const op = "company.List"

	if !session.Is(model.RoleAdmin) {
		return nil, apperr.Forbidden(op, "Only admins can list companies")
	}
	query := s.DB.WithContext(ctx).Order("created_at ASC")
	if verified != nil {
		query = query.Where("verified = ?", *verified)
	}
	var companies []model.Company
	if err := query.Find(&companies).Error; err != nil {
		return nil, database.TranslateError(op, "", err)
	}
	return companies, nil
}

// companyOf loads the company owned by ownerID.
func (d Deps) companyOf(ctx context.Context, ownerID any) (*model.Company, error) {
	var company model.Company
	err := d.DB.WithContext(ctx).First(&company, "owner_id = ?", ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}
