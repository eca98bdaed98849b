package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRole(t *testing.T) {
	cases := map[string]Role{
		"user":             RoleStudent,
		"USER":             RoleStudent,
		"student":          RoleStudent,
		"admin":            RoleAdmin,
		"faculty_approver": RoleFacultyApprover,
		"faculty-approver": RoleFacultyApprover,
		"company_hr":       RoleCompanyHR,
		" company ":        RoleCompanyHR,
	}
	for raw, want := range cases {
		got, err := NormalizeRole(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := NormalizeRole("superuser")
	assert.Error(t, err)
}

func TestLandingPath(t *testing.T) {
	assert.Equal(t, "/admin/dashboard", RoleAdmin.LandingPath())
	assert.Equal(t, "/approver/portfolios", RoleFacultyApprover.LandingPath())
	assert.Equal(t, "/student/dashboard", RoleStudent.LandingPath())
	assert.Equal(t, "/company/dashboard", RoleCompanyHR.LandingPath())
}

func TestProfileSession(t *testing.T) {
	p := Profile{ID: uuid.New(), Username: "nok", Role: RoleStudent}
	s := p.Session()
	assert.Equal(t, p.ID, s.UserID)
	assert.Equal(t, "nok", s.DisplayName)
	assert.False(t, s.CanReviewPortfolios())

	p.DisplayName = "Nok S."
	p.Role = RoleFacultyApprover
	s = p.Session()
	assert.Equal(t, "Nok S.", s.DisplayName)
	assert.True(t, s.CanReviewPortfolios())
	assert.True(t, s.Is(RoleAdmin, RoleFacultyApprover))
}

func TestParseJobType(t *testing.T) {
	for raw, want := range map[string]JobType{
		"internship": JobTypeInternship,
		"part-time":  JobTypePartTime,
		"PARTTIME":   JobTypePartTime,
		"Full Time":  JobTypeFullTime,
		"co-op":      JobTypeCoop,
		"freelance":  JobTypeFreelance,
	} {
		got, ok := ParseJobType(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseJobType("volunteer")
	assert.False(t, ok)
}
