// Package application provides HTTP handlers for job application operations.
package application

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	Applications *service.ApplicationService
}

// NewApplicationController creates a new instance of ApplicationController
func NewApplicationController(applications *service.ApplicationService) *ApplicationController {
	return &ApplicationController{
		Applications: applications,
	}
}

type applyInfo struct {
	JobID uint `json:"job_id" example:"1"`
}

type statusInfo struct {
	Status string `json:"status" example:"OFFERED"`
}

type acceptInfo struct {
	Proposal model.Proposal `json:"proposal"`
}

// ApplicationHandler handles the creation of a new job application by a student.
// @Summary Apply to a job
// @Description Only students can apply, once per job, and only to OPEN jobs
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param application body applyInfo true "Job to apply to"
// @Success 201 {object} model.Application "Successfully apply job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, request body, or job is closed"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 404 {object} utilities.ErrorResponse "Job not found"
// @Failure 409 {object} utilities.ErrorResponse "Already applied"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications [post]
func (ac *ApplicationController) ApplicationHandler(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	info := applyInfo{}
	if err := utilities.DecodeStrict(c, &info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	if info.JobID == 0 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "job_id is required"})
		return
	}

	app, err := ac.Applications.Apply(c.Request.Context(), session, info.JobID)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

// GetMyApplications lists the caller's applications, newest first.
// @Summary List my applications
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.Application "Applications with their job and company"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications [get]
func (ac *ApplicationController) GetMyApplications(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	apps, err := ac.Applications.ListMine(c.Request.Context(), session)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// GetCompanyApplications lists applications to the caller's jobs.
// @Summary List applications to my company's jobs
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job_id query integer false "Only applications to this job"
// @Success 200 {array} model.Application "Applications with their job and student"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or job_id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as company HR"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/applications [get]
func (ac *ApplicationController) GetCompanyApplications(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	var jobID *uint
	if raw := c.Query("job_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid job_id"})
			return
		}
		id := uint(parsed)
		jobID = &id
	}

	apps, err := ac.Applications.ListForCompany(c.Request.Context(), session, jobID)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// UpdateStatus lets the employer accept, reject or make an offer on an application.
// @Summary Update application status
// @Description Only the HR account owning the job's company. ACCEPTED is final.
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Application ID"
// @Param status body statusInfo true "ACCEPTED, REJECTED or OFFERED"
// @Success 200 {object} model.Application "Updated application"
// @Failure 400 {object} utilities.ErrorResponse "Unknown status or illegal transition"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Caller does not own the job"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id}/status [patch]
func (ac *ApplicationController) UpdateStatus(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	id, err := utilities.UintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	info := statusInfo{}
	if err := utilities.DecodeStrict(c, &info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	app, err := ac.Applications.UpdateStatus(c.Request.Context(), session, id, info.Status)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// AcceptOffer lets the student accept an offer.
// @Summary Accept an offer
// @Description The application must be OFFERED. The proposal overwrites the stored one.
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Application ID"
// @Param proposal body acceptInfo false "Proposal the student agrees to"
// @Success 200 {object} model.Application "Accepted application"
// @Failure 400 {object} utilities.ErrorResponse "Application is not offered"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Caller is not the applicant"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id}/accept [post]
func (ac *ApplicationController) AcceptOffer(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	id, err := utilities.UintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	info := acceptInfo{}
	if err := utilities.DecodeStrict(c, &info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	app, err := ac.Applications.AcceptOffer(c.Request.Context(), session, id, info.Proposal)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// DeclineOffer lets the student turn an offer down.
// @Summary Decline an offer
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Application ID"
// @Success 200 {object} model.Application "Declined application"
// @Failure 400 {object} utilities.ErrorResponse "Application is not offered"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Caller is not the applicant"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id}/decline [post]
func (ac *ApplicationController) DeclineOffer(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	id, err := utilities.UintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	app, err := ac.Applications.DeclineOffer(c.Request.Context(), session, id)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}
