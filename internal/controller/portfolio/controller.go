// Package portfolio provides HTTP handlers for the portfolio review workflow.
package portfolio

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// PortfolioController handles portfolio related endpoints
type PortfolioController struct {
	Portfolios *service.PortfolioService
}

// NewPortfolioController creates a new instance of PortfolioController
func NewPortfolioController(portfolios *service.PortfolioService) *PortfolioController {
	return &PortfolioController{
		Portfolios: portfolios,
	}
}

// PortfolioResponse is a portfolio with its completion fraction.
type PortfolioResponse struct {
	*model.Portfolio
	Completion float64 `json:"completion" example:"0.83"`
}

type reviewInfo struct {
	Approved bool `json:"approved"`
}

func respond(c *gin.Context, status int, p *model.Portfolio) {
	c.JSON(status, PortfolioResponse{Portfolio: p, Completion: p.Completion()})
}

func respondList(c *gin.Context, portfolios []model.Portfolio) {
	out := make([]PortfolioResponse, 0, len(portfolios))
	for i := range portfolios {
		out = append(out, PortfolioResponse{Portfolio: &portfolios[i], Completion: portfolios[i].Completion()})
	}
	c.JSON(http.StatusOK, out)
}

func (pc *PortfolioController) edit(c *gin.Context, submit bool) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	in := service.PortfolioInput{}
	if err := utilities.DecodeStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var (
		p   *model.Portfolio
		err error
	)
	if submit {
		p, err = pc.Portfolios.Submit(c.Request.Context(), session, in)
	} else {
		p, err = pc.Portfolios.SaveDraft(c.Request.Context(), session, in)
	}
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	respond(c, http.StatusOK, p)
}

// SaveDraft stores the caller's portfolio as a draft.
// @Summary Save portfolio draft
// @Description Absent fields keep their stored value. Rates accept a number or a numeric string, empty string clears them.
// @Tags Portfolio
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param portfolio body service.PortfolioInput true "Portfolio fields"
// @Success 200 {object} PortfolioResponse "Successfully save draft"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, request body, or portfolio item"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /portfolio/draft [put]
func (pc *PortfolioController) SaveDraft(c *gin.Context) {
	pc.edit(c, false)
}

// Submit stores the caller's portfolio and submits it for approval.
// @Summary Submit portfolio for approval
// @Description Completion must be at least 80%. Skills, projects, education, languages, availability and expected rate each count for one sixth.
// @Tags Portfolio
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param portfolio body service.PortfolioInput true "Portfolio fields"
// @Success 200 {object} PortfolioResponse "Successfully submit"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body, or completion below threshold"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /portfolio/submit [post]
func (pc *PortfolioController) Submit(c *gin.Context) {
	pc.edit(c, true)
}

// GetMine returns the caller's latest portfolio.
// @Summary Retrieve my latest portfolio
// @Tags Portfolio
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} PortfolioResponse "Successfully retrieve portfolio"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "No portfolio yet"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /portfolio [get]
func (pc *PortfolioController) GetMine(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	p, err := pc.Portfolios.GetLatest(c.Request.Context(), session, session.UserID)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	respond(c, http.StatusOK, p)
}

// GetStudentPortfolio returns the latest portfolio of a student.
// @Summary Retrieve a student's latest portfolio
// @Description Approvers see any portfolio, employers only approved public ones
// @Tags Portfolio
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param student_id path string true "Student ID"
// @Success 200 {object} PortfolioResponse "Successfully retrieve portfolio"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or student id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to view portfolios"
// @Failure 404 {object} utilities.ErrorResponse "Portfolio not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /students/{student_id}/portfolio [get]
func (pc *PortfolioController) GetStudentPortfolio(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid student id"})
		return
	}

	p, err := pc.Portfolios.GetLatest(c.Request.Context(), session, studentID)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	respond(c, http.StatusOK, p)
}

// ListPending lists portfolios waiting for review, oldest submission first.
// @Summary List submitted portfolios
// @Tags Review
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} PortfolioResponse "Submitted portfolios"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin or faculty approver"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /review/portfolios [get]
func (pc *PortfolioController) ListPending(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	portfolios, err := pc.Portfolios.ListPending(c.Request.Context(), session)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	respondList(c, portfolios)
}

// ListDiscoverable lists approved public portfolios for employers.
// @Summary Discover student portfolios
// @Tags Portfolio
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param skill query string false "Case insensitive substring of a skill name"
// @Success 200 {array} PortfolioResponse "Approved public portfolios"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Students cannot browse portfolios"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /portfolios [get]
func (pc *PortfolioController) ListDiscoverable(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	portfolios, err := pc.Portfolios.ListDiscoverable(c.Request.Context(), session, c.Query("skill"))
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	respondList(c, portfolios)
}

// Review approves a submitted portfolio or requests changes.
// @Summary Approve portfolio or request changes
// @Tags Review
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Portfolio ID"
// @Param decision body reviewInfo true "true approves, false requests changes"
// @Success 200 {object} PortfolioResponse "Reviewed portfolio"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body, or portfolio is not submitted"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin or faculty approver"
// @Failure 404 {object} utilities.ErrorResponse "Portfolio not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /review/portfolios/{id} [post]
func (pc *PortfolioController) Review(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	id, err := utilities.UintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	info := reviewInfo{}
	if err := utilities.DecodeStrict(c, &info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := pc.Portfolios.Review(c.Request.Context(), session, id, info.Approved)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	respond(c, http.StatusOK, p)
}

// Reject rejects a submitted portfolio.
// @Summary Reject portfolio
// @Tags Review
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Portfolio ID"
// @Success 200 {object} PortfolioResponse "Rejected portfolio"
// @Failure 400 {object} utilities.ErrorResponse "Portfolio is not submitted"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin or faculty approver"
// @Failure 404 {object} utilities.ErrorResponse "Portfolio not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /review/portfolios/{id}/reject [post]
func (pc *PortfolioController) Reject(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	id, err := utilities.UintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := pc.Portfolios.Reject(c.Request.Context(), session, id)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	respond(c, http.StatusOK, p)
}
