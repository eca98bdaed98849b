// Package company provides HTTP handlers for employer records.
package company

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// CompanyController handles company related endpoints
type CompanyController struct {
	Companies *service.CompanyService
}

// NewCompanyController creates a new instance of CompanyController
func NewCompanyController(companies *service.CompanyService) *CompanyController {
	return &CompanyController{
		Companies: companies,
	}
}

type registerCompanyInfo struct {
	Name   string `json:"name" example:"TechNova"`
	Domain string `json:"domain" example:"technova.co.th"`
}

// RegisterCompany creates the caller's company and turns the caller into its HR account.
// @Summary Register a company
// @Description A principal can own at most one company. Registering escalates the caller to COMPANY_HR.
// @Tags Company
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company body registerCompanyInfo true "Company name and email domain"
// @Success 201 {object} model.Company "Successfully register company"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or missing name"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Admins and approvers cannot register companies"
// @Failure 409 {object} utilities.ErrorResponse "Caller already owns a company"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company [post]
func (cc *CompanyController) RegisterCompany(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	info := registerCompanyInfo{}
	if err := utilities.DecodeStrict(c, &info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	company, err := cc.Companies.Register(c.Request.Context(), session, info.Name, info.Domain)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, company)
}

// GetMyCompany returns the company owned by the caller with its jobs.
// @Summary Retrieve my company
// @Tags Company
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} model.Company "Successfully retrieve company"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Caller has not registered a company"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/me [get]
func (cc *CompanyController) GetMyCompany(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	company, err := cc.Companies.Mine(c.Request.Context(), session)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}
