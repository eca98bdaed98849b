// Package admin provides HTTP handlers for the admin console.
package admin

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// AdminController handles admin-only endpoints
type AdminController struct {
	Companies *service.CompanyService
	Identity  *service.IdentityService
}

// NewAdminController creates a new instance of AdminController
func NewAdminController(companies *service.CompanyService, identity *service.IdentityService) *AdminController {
	return &AdminController{
		Companies: companies,
		Identity:  identity,
	}
}

type whitelistInfo struct {
	Email  string `json:"email" example:"dean@example.com"`
	Active *bool  `json:"active" example:"true"`
}

// GetCompanies lists companies, optionally filtered by verification.
// @Summary Get companies
// @Description Only admin can access this endpoint. If no query given, the server will return all companies
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param verified query boolean false "Only verified (true) or unverified (false) companies"
// @Success 200 {array} model.Company
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or verified query"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/companies [get]
func (ac *AdminController) GetCompanies(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	var verified *bool
	if raw := c.Query("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: fmt.Sprintf("Invalid verified value: %s", raw),
			})
			return
		}
		verified = &v
	}

	companies, err := ac.Companies.List(c.Request.Context(), session, verified)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, companies)
}

// VerifyCompany changes verify status of the company
// @Summary Change company verify status
// @Description Only admin can access this endpoint
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company_id path string true "Company ID"
// @Param status query string false "Status is case insensitive and allow only unverified, or verified (verified by default)" default(verified)
// @Success 200 {object} model.Company
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, company id, or status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "Given company ID not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/companies/{company_id}/verify [patch]
func (ac *AdminController) VerifyCompany(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	companyID, err := uuid.Parse(c.Param("company_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid company id"})
		return
	}

	var verified bool
	switch status := strings.ToLower(c.DefaultQuery("status", "verified")); status {
	case "verified":
		verified = true
	case "unverified":
		verified = false
	default:
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown status: %s", status),
		})
		return
	}

	company, err := ac.Companies.Verify(c.Request.Context(), session, companyID.String(), verified)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

// SetWhitelist adds an email to the admin allow-list or deactivates it.
// @Summary Manage admin whitelist
// @Description Only admin can access this endpoint. active defaults to true
// @Tags Admin
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param entry body whitelistInfo true "Whitelist entry"
// @Success 200 {object} model.AdminWhitelist
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or email"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/whitelist [put]
func (ac *AdminController) SetWhitelist(c *gin.Context) {
	info := whitelistInfo{}
	if err := utilities.DecodeStrict(c, &info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	active := true
	if info.Active != nil {
		active = *info.Active
	}

	entry, err := ac.Identity.SetWhitelist(c.Request.Context(), info.Email, active)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
