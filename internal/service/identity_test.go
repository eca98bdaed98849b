package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

func TestIdentity_RegisterAndLogin(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	username := "reg_" + uuid.NewString()[:8]

	profile, err := svc.Identity.Register(ctx, username, "longenough", "user")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, profile.Role)

	_, err = svc.Identity.Register(ctx, username, "longenough", "student")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	_, err = svc.Identity.Register(ctx, "x"+username, "short", "student")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	_, err = svc.Identity.Register(ctx, "y"+username, "longenough", "admin")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	company, err := svc.Identity.Register(ctx, "co_"+username, "longenough", "company")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCompanyHR, company.Role)

	got, err := svc.Identity.Login(ctx, username, "longenough")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)

	_, err = svc.Identity.Login(ctx, username, "wrong-password")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
	_, err = svc.Identity.Login(ctx, "nobody_"+username, "longenough")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
}

func TestIdentity_AdminAllowList(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	_, err := svc.Identity.RegisterAdmin(ctx, "stranger@example.com", "stranger", "longenough")
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))

	email := "admin_" + uuid.NewString()[:8] + "@example.com"
	_, err = svc.Identity.SetWhitelist(ctx, email, true)
	require.NoError(t, err)

	admin, err := svc.Identity.RegisterAdmin(ctx, email, "", "longenough")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	got, err := svc.Identity.AdminLogin(ctx, email, "longenough")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
	got, err = svc.Identity.Login(ctx, admin.Username, "longenough")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	entry, err := svc.Identity.SetWhitelist(ctx, email, false)
	require.NoError(t, err)
	assert.False(t, entry.Active)

	_, err = svc.Identity.AdminLogin(ctx, email, "longenough")
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))
	// the username login is closed as well
	_, err = svc.Identity.Login(ctx, admin.Username, "longenough")
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))

	_, err = svc.Identity.SetWhitelist(ctx, "not-an-email", true)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestIdentity_GoogleLogin(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	gid := uuid.NewString()

	first, created, err := svc.Identity.GoogleLogin(ctx, model.GoogleUserInfo{GID: gid, FirstName: "Nok", LastName: "Chai"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.RoleStudent, first.Role)
	assert.Equal(t, "Nok Chai", first.DisplayName)

	again, created, err := svc.Identity.GoogleLogin(ctx, model.GoogleUserInfo{GID: gid})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
}

func TestIdentity_UpdateProfile(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	student := newProfile(t, model.RoleStudent)

	updated, err := svc.Identity.UpdateProfile(ctx, student.Session(), model.EditableProfileInfo{Faculty: "Engineering"})
	require.NoError(t, err)
	assert.Equal(t, "Engineering", updated.Faculty)
	assert.Equal(t, student.DisplayName, updated.DisplayName)

	me, err := svc.Identity.Me(ctx, student.Session())
	require.NoError(t, err)
	assert.Equal(t, "Engineering", me.Faculty)

	_, err = svc.Identity.Me(ctx, model.Session{UserID: uuid.New()})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
