package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
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
	pc := NewPortfolioController(services.Portfolios)

	r := gin.New()
	r.Use(middleware.RequireAuth(testDB, auth.TestIssuer))

	student := r.Group("/portfolio", middleware.CheckRole(model.RoleStudent))
	student.GET("", pc.GetMine)
	student.PUT("/draft", pc.SaveDraft)
	student.POST("/submit", pc.Submit)

	r.GET("/students/:student_id/portfolio", pc.GetStudentPortfolio)
	r.GET("/portfolios", middleware.CheckRole(model.RoleCompanyHR, model.RoleAdmin, model.RoleFacultyApprover), pc.ListDiscoverable)

	review := r.Group("/review/portfolios", middleware.CheckRole(model.RoleAdmin, model.RoleFacultyApprover))
	review.GET("", pc.ListPending)
	review.POST("/:id", pc.Review)
	review.POST("/:id/reject", pc.Reject)
	return r
}

func fullBody(skill string) gin.H {
	return gin.H{
		"skills":        []gin.H{{"name": skill, "level": "intermediate"}},
		"projects":      []gin.H{{"title": "Campus marketplace", "technologies": []string{"Go", "React"}}},
		"education":     []gin.H{{"institution": "Sripatum University", "degree": "BEng", "start_year": 2022}},
		"languages":     []gin.H{{"name": "Thai", "proficiency": "native"}},
		"availability":  "20 hours per week",
		"expected_rate": 300,
	}
}

func TestPortfolioReviewFlow(t *testing.T) {
	r := newEngine()
	student, studentToken := testutil.NewUser(t, testDB, model.RoleStudent)
	_, approverToken := testutil.NewUser(t, testDB, model.RoleFacultyApprover)
	_, hrToken := testutil.NewUser(t, testDB, model.RoleCompanyHR)

	rec, resp := testutil.MakeJSONRequest(gin.H{"skills": []gin.H{{"name": "Kotlin"}}}, studentToken, r, "/portfolio/draft", http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, string(model.PortfolioDraft), resp["status"])
	assert.InDelta(t, 1.0/6, resp["completion"], 0.001)

	rec, resp = testutil.MakeJSONRequest(nil, studentToken, r, "/portfolio/submit", http.MethodPost)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "complete")

	rec, resp = testutil.MakeJSONRequest(fullBody("Kotlin"), studentToken, r, "/portfolio/submit", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, string(model.PortfolioSubmitted), resp["status"])
	assert.Equal(t, float64(1), resp["version"])
	assert.NotEmpty(t, resp["submitted_at"])
	id := int(resp["id"].(float64))

	studentPath := "/students/" + student.ID.String() + "/portfolio"
	rec, _ = testutil.MakeJSONRequest(nil, hrToken, r, studentPath, http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, approverToken, r, "/review/portfolios", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	var found bool
	for _, p := range pending {
		found = found || int(p["id"].(float64)) == id
	}
	assert.True(t, found)

	rec, _ = testutil.MakeJSONRequest(gin.H{"approved": true}, studentToken, r, fmt.Sprintf("/review/portfolios/%d", id), http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = testutil.MakeJSONRequest(gin.H{"approved": true}, approverToken, r, fmt.Sprintf("/review/portfolios/%d", id), http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, string(model.PortfolioApproved), resp["status"])
	assert.NotEmpty(t, resp["approved_at"])

	rec, _ = testutil.MakeJSONRequest(gin.H{"approved": true}, approverToken, r, fmt.Sprintf("/review/portfolios/%d", id), http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = testutil.MakeJSONRequest(nil, hrToken, r, studentPath, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, string(model.PortfolioApproved), resp["status"])

	rec, _ = testutil.MakeJSONRequest(nil, hrToken, r, "/portfolios?skill=kotl", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	var discovered []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &discovered))
	require.Len(t, discovered, 1)
	assert.Equal(t, float64(id), discovered[0]["id"])
}

func TestPortfolioReject(t *testing.T) {
	r := newEngine()
	_, studentToken := testutil.NewUser(t, testDB, model.RoleStudent)
	_, adminToken := testutil.NewUser(t, testDB, model.RoleAdmin)

	rec, resp := testutil.MakeJSONRequest(fullBody("Rust"), studentToken, r, "/portfolio/submit", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := int(resp["id"].(float64))

	rec, resp = testutil.MakeJSONRequest(nil, adminToken, r, fmt.Sprintf("/review/portfolios/%d/reject", id), http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, string(model.PortfolioRejected), resp["status"])

	rec, resp = testutil.MakeJSONRequest(nil, studentToken, r, "/portfolio", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(model.PortfolioRejected), resp["status"])
}

func TestSaveDraft_InvalidInput(t *testing.T) {
	r := newEngine()
	_, token := testutil.NewUser(t, testDB, model.RoleStudent)

	rec, resp := testutil.MakeJSONRequest(gin.H{"expected_rate": "a lot"}, token, r, "/portfolio/draft", http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "expected_rate")

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "APPROVED"}, token, r, "/portfolio/draft", http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = testutil.MakeJSONRequest(gin.H{"expected_rate": "1200.5"}, token, r, "/portfolio/draft", http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1200.5, resp["expected_rate"])
}

func TestPortfolioAccessRules(t *testing.T) {
	r := newEngine()
	_, studentToken := testutil.NewUser(t, testDB, model.RoleStudent)
	other, _ := testutil.NewUser(t, testDB, model.RoleStudent)

	rec, _ := testutil.MakeJSONRequest(nil, studentToken, r, "/portfolio", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, studentToken, r, "/students/"+other.ID.String()+"/portfolio", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, studentToken, r, "/students/not-a-uuid/portfolio", http.MethodGet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, studentToken, r, "/portfolios", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, studentToken, r, "/review/portfolios", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
