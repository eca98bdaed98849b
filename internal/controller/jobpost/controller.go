// Package jobpost provides HTTP handlers for job post related operations.
package jobpost

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// JobPostController handles job post related endpoints
type JobPostController struct {
	Jobs *service.JobService
}

// NewJobPostController creates a new instance of JobPostController
func NewJobPostController(jobs *service.JobService) *JobPostController {
	return &JobPostController{
		Jobs: jobs,
	}
}

type statusInfo struct {
	Status string `json:"status" example:"CLOSED"`
}

// CreateJobPostHandler handles the creation of a new job post by a company user.
// @Summary Create job post based on given json structure
// @Description Caller must own a company, verified or not. The post starts OPEN.
// @Tags Jobpost
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Jobpost body service.JobInput true "Input jobpost information"
// @Success 201 {object} model.Job "Successfully create job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, invalid job post struct, or no company registered"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as company HR"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs [post]
func (jc *JobPostController) CreateJobPostHandler(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	in := service.JobInput{}
	if err := utilities.DecodeStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, err := jc.Jobs.Post(c.Request.Context(), session, in)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// GetPosts fetches every OPEN job post that matches the query.
// @Summary Get open job posts based on query
// @Description Every query is optional
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param text query string false "Case insensitive substring of the job title or company name"
// @Param job_type query string false "internship, part-time, full-time, freelance or coop, case and separator insensitive"
// @Param location query string false "Case insensitive substring of the location"
// @Success 200 {array} model.Job "Return open job post(s), newest first"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or unknown job type"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs [get]
func (jc *JobPostController) GetPosts(c *gin.Context) {
	var filter model.JobFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	jobs, err := jc.Jobs.ListOpen(c.Request.Context(), filter)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetPostByID retrieves a job post with its company.
// @Summary Get job post by ID
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} model.Job "Return the job post with the specified ID"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs/{id} [get]
func (jc *JobPostController) GetPostByID(c *gin.Context) {
	id, err := utilities.UintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, err := jc.Jobs.Get(c.Request.Context(), id)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetMyPosts lists every job post of the caller's company, whatever its status.
// @Summary Get job posts of my company
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.Job "Return job post(s), newest first"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as company HR"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/jobs [get]
func (jc *JobPostController) GetMyPosts(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	jobs, err := jc.Jobs.ListMine(c.Request.Context(), session)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// EditJobPost overwrites the non-empty fields of a job post.
// @Summary Edit job post based on given json structure
// @Description Only the company that owns the post has access to this endpoint
// @Tags Jobpost
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Param Jobpost body service.JobInput true "Input jobpost information"
// @Success 200 {object} model.Job "Successfully update job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or invalid job post struct"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to edit"
// @Failure 404 {object} utilities.ErrorResponse "Post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs/{id} [patch]
func (jc *JobPostController) EditJobPost(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	id, err := utilities.UintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	in := service.JobInput{}
	if err := utilities.DecodeStrict(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, err := jc.Jobs.Edit(c.Request.Context(), session, id, in)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// SetPostStatus opens or closes a job post.
// @Summary Open or close a job post
// @Description Only the company that owns the post has access to this endpoint
// @Tags Jobpost
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Param status body statusInfo true "OPEN or CLOSED"
// @Success 200 {object} model.Job "Successfully update job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or unknown status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to edit"
// @Failure 404 {object} utilities.ErrorResponse "Post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs/{id}/status [patch]
func (jc *JobPostController) SetPostStatus(c *gin.Context) {
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

	job, err := jc.Jobs.SetStatus(c.Request.Context(), session, id, info.Status)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}
