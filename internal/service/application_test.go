package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/notify"
)

func TestApply_DuplicateIsConflict(t *testing.T) {
	svc, broker := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()
	hr, job := newCompanyJob(t, model.JobTypeInternship)

	events, cancel := broker.Subscribe(ctx, notify.UserTopic(hr.ID))
	defer cancel()

	app, err := svc.Applications.Apply(ctx, student, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationApplied, app.Status)
	assert.Zero(t, app.PortfolioVersion)
	assert.False(t, app.SubmittedAt.IsZero())

	ev := <-events
	assert.Equal(t, notify.KindApplicationCreated, ev.Kind)
	assert.Equal(t, app.ID, ev.RefID)

	_, err = svc.Applications.Apply(ctx, student, job.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

func TestApply_Rules(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()

	_, err := svc.Applications.Apply(ctx, student, 999999)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = svc.Applications.Apply(ctx, student, database.TestJobClosedIntern.ID)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = svc.Applications.Apply(ctx, database.TestHRUser2.Session(), database.TestJobIntern.ID)
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))
}

func TestApply_RecordsApprovedPortfolioVersion(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()
	_, job := newCompanyJob(t, model.JobTypeFullTime)

	p, err := svc.Portfolios.Submit(ctx, student, fullPortfolio())
	require.NoError(t, err)
	_, err = svc.Portfolios.Review(ctx, database.TestApprover.Session(), p.ID, true)
	require.NoError(t, err)

	app, err := svc.Applications.Apply(ctx, student, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, app.PortfolioVersion)
}

func TestApplication_OfferAccepted(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.Applications.Now = fixedClock(now)

	student := newProfile(t, model.RoleStudent).Session()
	hr, job := newCompanyJob(t, model.JobTypePartTime)
	app, err := svc.Applications.Apply(ctx, student, job.ID)
	require.NoError(t, err)

	// a student cannot accept before an offer
	_, err = svc.Applications.AcceptOffer(ctx, student, app.ID, model.Proposal{})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	// only the owning employer reviews
	_, err = svc.Applications.UpdateStatus(ctx, database.TestHRUser1.Session(), app.ID, "OFFERED")
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))

	offered, err := svc.Applications.UpdateStatus(ctx, hr.Session(), app.ID, "offered")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationOffered, offered.Status)

	// another student cannot answer the offer
	_, err = svc.Applications.AcceptOffer(ctx, database.TestStudent2.Session(), app.ID, model.Proposal{})
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))

	accepted, err := svc.Applications.AcceptOffer(ctx, student, app.ID, model.Proposal{StartDate: "2026-06-01", SalaryOffer: "18000"})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)
	assert.True(t, accepted.AcceptedAt.Equal(now))
	assert.Equal(t, "18000", accepted.Proposal.Data().SalaryOffer)

	// ACCEPTED is final
	_, err = svc.Applications.UpdateStatus(ctx, hr.Session(), app.ID, "REJECTED")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestApplication_DeclineOffer(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()
	hr, job := newCompanyJob(t, model.JobTypeFreelance)

	app, err := svc.Applications.Apply(ctx, student, job.ID)
	require.NoError(t, err)
	_, err = svc.Applications.UpdateStatus(ctx, hr.Session(), app.ID, "OFFERED")
	require.NoError(t, err)

	declined, err := svc.Applications.DeclineOffer(ctx, student, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationRejected, declined.Status)
	assert.NotNil(t, declined.DeclinedAt)
}

func TestApplication_UpdateStatusValidation(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()
	hr, job := newCompanyJob(t, model.JobTypeCoop)

	app, err := svc.Applications.Apply(ctx, student, job.ID)
	require.NoError(t, err)

	_, err = svc.Applications.UpdateStatus(ctx, hr.Session(), app.ID, "HIRED")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	_, err = svc.Applications.UpdateStatus(ctx, hr.Session(), app.ID, "APPLIED")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	_, err = svc.Applications.UpdateStatus(ctx, hr.Session(), 999999, "OFFERED")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestApplication_Lists(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()
	hr, job := newCompanyJob(t, model.JobTypeInternship)

	app, err := svc.Applications.Apply(ctx, student, job.ID)
	require.NoError(t, err)

	mine, err := svc.Applications.ListMine(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, job.Company.Name, mine[0].Job.Company.Name)

	forCompany, err := svc.Applications.ListForCompany(ctx, hr.Session(), nil)
	require.NoError(t, err)
	require.Len(t, forCompany, 1)
	assert.Equal(t, app.ID, forCompany[0].ID)
	require.NotNil(t, forCompany[0].Student)
	assert.Equal(t, student.UserID, forCompany[0].Student.ID)

	other, err := svc.Applications.ListForCompany(ctx, database.TestHRUser2.Session(), &job.ID)
	require.NoError(t, err)
	assert.Empty(t, other)
}
