package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/notify"
)

func TestPortfolio_SubmitAndApprove(t *testing.T) {
	svc, broker := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()

	events, cancel := broker.Subscribe(ctx, notify.ApproversTopic, notify.UserTopic(student.UserID))
	defer cancel()

	submitted, err := svc.Portfolios.Submit(ctx, student, fullPortfolio())
	require.NoError(t, err)
	assert.Equal(t, model.PortfolioSubmitted, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, 1, submitted.Version)
	require.NotNil(t, submitted.ExpectedRate)
	assert.InDelta(t, 250.5, *submitted.ExpectedRate, 0.001)

	ev := <-events
	assert.Equal(t, notify.KindPortfolioSubmitted, ev.Kind)
	assert.Equal(t, submitted.ID, ev.RefID)

	approver := database.TestApprover.Session()
	approved, err := svc.Portfolios.Review(ctx, approver, submitted.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.PortfolioApproved, approved.Status)
	assert.NotNil(t, approved.ApprovedAt)
	require.NotNil(t, approved.ApproverID)
	assert.Equal(t, approver.UserID, *approved.ApproverID)

	ev = <-events
	assert.Equal(t, notify.KindPortfolioReviewed, ev.Kind)

	// employers see approved public portfolios
	hr := database.TestHRUser1.Session()
	got, err := svc.Portfolios.GetLatest(ctx, hr, student.UserID)
	require.NoError(t, err)
	assert.Equal(t, approved.ID, got.ID)

	found, err := svc.Portfolios.ListDiscoverable(ctx, hr, "go")
	require.NoError(t, err)
	ids := []uint{}
	for _, p := range found {
		assert.True(t, p.Discoverable())
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, approved.ID)
}

func TestPortfolio_SubmitBelowThreshold(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()

	in := fullPortfolio()
	in.Languages = nil
	in.Availability = nil
	_, err := svc.Portfolios.Submit(ctx, student, in)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	var count int64
	require.NoError(t, testDB.Model(&model.Portfolio{}).Where("student_id = ?", student.UserID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPortfolio_ReviewRequiresApprover(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()

	p, err := svc.Portfolios.Submit(ctx, student, fullPortfolio())
	require.NoError(t, err)

	_, err = svc.Portfolios.Review(ctx, student, p.ID, true)
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))
	_, err = svc.Portfolios.Reject(ctx, database.TestHRUser1.Session(), p.ID)
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))

	rejected, err := svc.Portfolios.Reject(ctx, database.TestAdminUser.Session(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PortfolioRejected, rejected.Status)

	// a decided portfolio cannot be decided again
	_, err = svc.Portfolios.Review(ctx, database.TestApprover.Session(), p.ID, true)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestPortfolio_ChangesRequestedThenResubmit(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()

	p, err := svc.Portfolios.Submit(ctx, student, fullPortfolio())
	require.NoError(t, err)
	_, err = svc.Portfolios.Review(ctx, database.TestApprover.Session(), p.ID, false)
	require.NoError(t, err)

	draft, err := svc.Portfolios.SaveDraft(ctx, student, PortfolioInput{Projects: []model.Project{{Title: "Second project"}}})
	require.NoError(t, err)
	assert.Equal(t, p.ID, draft.ID)
	assert.Equal(t, model.PortfolioDraft, draft.Status)
	assert.Len(t, draft.Skills, 1)

	again, err := svc.Portfolios.Submit(ctx, student, PortfolioInput{})
	require.NoError(t, err)
	assert.Equal(t, model.PortfolioSubmitted, again.Status)
	assert.Equal(t, 2, again.Version)
}

func TestPortfolio_SaveDraftValidation(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()

	_, err := svc.Portfolios.SaveDraft(ctx, student, PortfolioInput{ExpectedRate: json.RawMessage(`"lots"`)})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	// wider than numeric(12,2)
	_, err = svc.Portfolios.SaveDraft(ctx, student, PortfolioInput{FreelanceRate: json.RawMessage(`"10000000000"`)})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = svc.Portfolios.SaveDraft(ctx, student, PortfolioInput{Skills: []model.Skill{{Level: "expert"}}})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	p, err := svc.Portfolios.SaveDraft(ctx, student, PortfolioInput{ExpectedRate: json.RawMessage(`""`)})
	require.NoError(t, err)
	assert.Nil(t, p.ExpectedRate)
	assert.Equal(t, model.VisibilityPublic, p.Visibility)

	_, err = svc.Portfolios.SaveDraft(ctx, database.TestHRUser1.Session(), PortfolioInput{})
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))
}

func TestPortfolio_GetLatestVisibility(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()

	_, err := svc.Portfolios.SaveDraft(ctx, student, fullPortfolio())
	require.NoError(t, err)

	_, err = svc.Portfolios.GetLatest(ctx, student, student.UserID)
	assert.NoError(t, err)
	_, err = svc.Portfolios.GetLatest(ctx, database.TestApprover.Session(), student.UserID)
	assert.NoError(t, err)

	_, err = svc.Portfolios.GetLatest(ctx, database.TestHRUser1.Session(), student.UserID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	_, err = svc.Portfolios.GetLatest(ctx, database.TestStudent2.Session(), student.UserID)
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))
}

func TestPortfolio_PrivateHiddenFromEmployers(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()

	in := fullPortfolio()
	private := "private"
	in.Visibility = &private
	p, err := svc.Portfolios.Submit(ctx, student, in)
	require.NoError(t, err)
	approved, err := svc.Portfolios.Review(ctx, database.TestApprover.Session(), p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.PortfolioApproved, approved.Status)
	assert.Equal(t, model.VisibilityPrivate, approved.Visibility)
	assert.False(t, approved.Discoverable())

	hr := database.TestHRUser1.Session()
	_, err = svc.Portfolios.GetLatest(ctx, hr, student.UserID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	found, err := svc.Portfolios.ListDiscoverable(ctx, hr, "")
	require.NoError(t, err)
	for _, f := range found {
		assert.NotEqual(t, approved.ID, f.ID)
	}

	// the owner and reviewers still see it
	_, err = svc.Portfolios.GetLatest(ctx, student, student.UserID)
	assert.NoError(t, err)
	_, err = svc.Portfolios.GetLatest(ctx, database.TestApprover.Session(), student.UserID)
	assert.NoError(t, err)
}

func TestPortfolio_ListPending(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()

	p, err := svc.Portfolios.Submit(ctx, student, fullPortfolio())
	require.NoError(t, err)

	pending, err := svc.Portfolios.ListPending(ctx, database.TestApprover.Session())
	require.NoError(t, err)
	ids := []uint{}
	for _, item := range pending {
		assert.Equal(t, model.PortfolioSubmitted, item.Status)
		ids = append(ids, item.ID)
	}
	assert.Contains(t, ids, p.ID)

	_, err = svc.Portfolios.ListPending(ctx, student)
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))
}

func TestPortfolio_UploadResume(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent).Session()

	_, err := svc.Portfolios.UploadResume(ctx, student, "cv.docx", []byte("x"))
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	// unreadable PDFs are still stored, only the text is missing
	p, err := svc.Portfolios.UploadResume(ctx, student, "cv.PDF", []byte("not really a pdf"))
	require.NoError(t, err)
	require.NotNil(t, p.ResumeFileID)
	assert.Equal(t, model.PortfolioDraft, p.Status)

	file, err := svc.Portfolios.ResumeFile(ctx, student, student.UserID)
	require.NoError(t, err)
	assert.Equal(t, ".pdf", file.Extension)
	assert.Equal(t, []byte("not really a pdf"), file.Content)
}
