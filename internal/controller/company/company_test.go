package company

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/XevilA/spu-nexus-sub000/internal/auth"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/logger"
	"github.com/XevilA/spu-nexus-sub000/internal/middleware"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/testutil"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	code := m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
	os.Exit(code)
}

func newEngine() *gin.Engine {
	services := service.New(service.Deps{DB: testDB, Log: logger.Discard()})
	cc := NewCompanyController(services.Companies)

	r := gin.New()
	r.Use(middleware.RequireAuth(testDB, auth.TestIssuer))
	r.POST("/company", cc.RegisterCompany)
	r.GET("/company/me", cc.GetMyCompany)
	return r
}

func TestRegisterCompany_StudentBecomesHR(t *testing.T) {
	r := newEngine()
	profile, token := testutil.NewUser(t, testDB, model.RoleStudent)

	body := gin.H{"name": "  Siam Robotics ", "domain": "SiamRobotics.co.th"}
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/company", http.MethodPost)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Siam Robotics", resp["name"])
	assert.Equal(t, "siamrobotics.co.th", resp["domain"])
	assert.Equal(t, false, resp["verified"])

	var stored model.Profile
	require.NoError(t, testDB.First(&stored, "id = ?", profile.ID).Error)
	assert.Equal(t, model.RoleCompanyHR, stored.Role)

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/company/me", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Siam Robotics", resp["name"])

	rec, _ = testutil.MakeJSONRequest(gin.H{"name": "Second Co"}, token, r, "/company", http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterCompany_Errors(t *testing.T) {
	r := newEngine()

	_, studentToken := testutil.NewUser(t, testDB, model.RoleStudent)
	rec, resp := testutil.MakeJSONRequest(gin.H{"name": "   "}, studentToken, r, "/company", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "name")

	rec, _ = testutil.MakeJSONRequest(gin.H{"name": "Co", "verified": true}, studentToken, r, "/company", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, approverToken := testutil.NewUser(t, testDB, model.RoleFacultyApprover)
	rec, _ = testutil.MakeJSONRequest(gin.H{"name": "Faculty Co"}, approverToken, r, "/company", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetMyCompany_NotRegistered(t *testing.T) {
	r := newEngine()
	_, token := testutil.NewUser(t, testDB, model.RoleCompanyHR)

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/company/me", http.MethodGet)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "You have not registered a company", resp["error"])
}

func TestGetMyCompany_SeededCompanyWithJobs(t *testing.T) {
	r := newEngine()
	token, err := auth.GetAccessToken(t, testDB, database.TestHRUser1.Username, database.TestSeedPassword)
	require.NoError(t, err)

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/company/me", http.MethodGet)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, database.TestCompany1.Name, resp["name"])
	assert.Equal(t, true, resp["verified"])
	assert.NotEmpty(t, resp["jobs"])
}
