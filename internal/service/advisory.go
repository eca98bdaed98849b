package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/XevilA/spu-nexus-sub000/internal/advisor"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

// AdvisoryContextLoader reads prompt context for the advice bridge.
type AdvisoryContextLoader struct {
	Deps
}

var _ advisor.ContextSource = (*AdvisoryContextLoader)(nil)

// AdvisoryContext loads the user's profile, their latest APPROVED portfolio when they
// have one, and up to maxJobs OPEN jobs with their companies.
func (l *AdvisoryContextLoader) AdvisoryContext(ctx context.Context, userID uuid.UUID, maxJobs int) (advisor.Context, error) {
	const op = "advisory.Context"

	var out advisor.Context
	db := l.DB.WithContext(ctx)

	if err := db.First(&out.Profile, "id = ?", userID).Error; err != nil {
		return advisor.Context{}, database.TranslateError(op, "Profile not found", err)
	}

	var portfolio model.Portfolio
	err := db.Where("student_id = ? AND status = ?", userID, model.PortfolioApproved).
		Order("approved_at DESC, id DESC").
		First(&portfolio).Error
	switch {
	case err == nil:
		out.Portfolio = &portfolio
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return advisor.Context{}, database.TranslateError(op, "", err)
	}

	out.Jobs = []model.Job{}
	err = db.Preload("Company").
		Where("status = ?", model.JobStatusOpen).
		Order("created_at DESC").
		Limit(maxJobs).
		Find(&out.Jobs).Error
	if err != nil {
		return advisor.Context{}, database.TranslateError(op, "", err)
	}
	return out, nil
}
