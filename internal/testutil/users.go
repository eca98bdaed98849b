package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/XevilA/spu-nexus-sub000/internal/auth"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

// NewUser creates a throwaway principal with the given role and returns it with an
// access token signed by auth.TestIssuer. Admins get an email on the active allow-list.
func NewUser(t *testing.T, db *database.DBinstanceStruct, role model.Role) (model.Profile, string) {
	t.Helper()
	profile := model.Profile{
		Username:            "t_" + uuid.NewString()[:8],
		Role:                role,
		EditableProfileInfo: model.EditableProfileInfo{DisplayName: string(role) + " tester"},
	}
	if role == model.RoleAdmin {
		email := profile.Username + "@example.com"
		profile.Email = &email
		require.NoError(t, db.Create(&model.AdminWhitelist{Email: email, Active: true}).Error)
	}
	require.NoError(t, db.Create(&profile).Error)

	token, err := auth.TestIssuer.GenerateStandardToken(profile.ID)
	require.NoError(t, err)
	return profile, token
}

// NewCompanyJob creates an HR principal owning a company with one OPEN job of the
// given type, and returns the principal's token.
func NewCompanyJob(t *testing.T, db *database.DBinstanceStruct, jobType model.JobType) (model.Profile, string, model.Job) {
	t.Helper()
	hr, token := NewUser(t, db, model.RoleCompanyHR)
	company := model.Company{OwnerID: hr.ID, Name: "Co " + hr.Username}
	require.NoError(t, db.Omit("Owner", "Jobs").Create(&company).Error)

	job := model.Job{
		CompanyID:       company.ID,
		EditableJobInfo: model.EditableJobInfo{Title: "Role at " + company.Name, JobType: jobType, Requirements: []string{}},
		Status:          model.JobStatusOpen,
		Source:          model.JobSourceDirect,
	}
	require.NoError(t, db.Omit("Company").Create(&job).Error)
	job.Company = company
	return hr, token, job
}
