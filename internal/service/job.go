package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm/clause"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

const jobCacheNamespace = "jobs:open"

// JobInput is the writable part of a job posting.
type JobInput struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	JobType      string     `json:"job_type" example:"internship"`
	Location     string     `json:"location"`
	Compensation string     `json:"compensation"`
	Requirements []string   `json:"requirements"`
	Deadline     *time.Time `json:"deadline"`
}

// JobService is the job listing store.
type JobService struct {
	Deps
}

// Post creates an OPEN job for the caller's company.
func (s *JobService) Post(ctx context.Context, session model.Session, in JobInput) (model.Job, error) {
	const op = "job.Post"

	company, err := s.companyOf(ctx, session.UserID)
	if err != nil {
		return model.Job{}, database.TranslateError(op, "", err)
	}
	if company == nil {
		return model.Job{}, apperr.Validation(op, "Register a company before posting jobs")
	}
	if strings.TrimSpace(in.Title) == "" {
		return model.Job{}, apperr.Validation(op, "Title is required")
	}
	jobType, ok := model.ParseJobType(in.JobType)
	if !ok {
		return model.Job{}, apperr.Validation(op, fmt.Sprintf("Unknown job type %q", in.JobType))
	}

	job := model.Job{
		CompanyID: company.ID,
		EditableJobInfo: model.EditableJobInfo{
			Title:        strings.TrimSpace(in.Title),
			Description:  in.Description,
			JobType:      jobType,
			Location:     strings.TrimSpace(in.Location),
			Compensation: in.Compensation,
			Requirements: pq.StringArray(in.Requirements),
			Deadline:     in.Deadline,
		},
		Status: model.JobStatusOpen,
		Source: model.JobSourceDirect,
	}
	if job.Requirements == nil {
		job.Requirements = pq.StringArray{}
	}
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(&job).Error; err != nil {
		return model.Job{}, database.TranslateError(op, "", err)
	}
	job.Company = *company
	s.invalidateJobs(ctx)
	return job, nil
}

// ListOpen returns OPEN jobs matching filter, newest first.
func (s *JobService) ListOpen(ctx context.Context, filter model.JobFilter) ([]model.Job, error) {
	const op = "job.ListOpen"

	var jobType model.JobType
	if strings.TrimSpace(filter.JobType) != "" {
		parsed, ok := model.ParseJobType(filter.JobType)
		if !ok {
			return nil, apperr.Validation(op, fmt.Sprintf("Unknown job type %q", filter.JobType))
		}
		jobType = parsed
	}

	key := s.listingKey(ctx, filter.Text, string(jobType), filter.Location)
	if key != "" {
		var cached []model.Job
		if hit, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		} else if err != nil {
			s.Log.WithError(err).Warn("job cache read failed")
		}
	}

	query := s.DB.WithContext(ctx).
		Joins("JOIN companies ON companies.id = jobs.company_id").
		Preload("Company").
		Where("jobs.status = ?", model.JobStatusOpen)

	if text := strings.TrimSpace(filter.Text); text != "" {
		pattern := containsPattern(text)
		query = query.Where("jobs.title ILIKE ? OR companies.name ILIKE ?", pattern, pattern)
	}
	if jobType != "" {
		query = query.Where("jobs.job_type = ?", jobType)
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		query = query.Where("jobs.location ILIKE ?", containsPattern(loc))
	}

	jobs := []model.Job{}
	if err := query.Order(clause.OrderByColumn{Column: clause.Column{Table: "jobs", Name: "created_at"}, Desc: true}).Find(&jobs).Error; err != nil {
		return nil, database.TranslateError(op, "", err)
	}

	if key != "" {
		if err := s.Cache.SetJSON(ctx, key, jobs, s.JobCacheTTL); err != nil {
			s.Log.WithError(err).Warn("job cache write failed")
		}
	}
	return jobs, nil
}

// Get returns a job with its company.
func (s *JobService) Get(ctx context.Context, id uint) (model.Job, error) {
	var job model.Job
	err := s.DB.WithContext(ctx).Preload("Company").First(&job, id).Error
	return job, database.TranslateError("job.Get", "Job not found", err)
}

// ListMine returns every job of the caller's company regardless of status.
func (s *JobService) ListMine(ctx context.Context, session model.Session) ([]model.Job, error) {
	const op = "job.ListMine"

	company, err := s.companyOf(ctx, session.UserID)
	if err != nil {
		return nil, database.TranslateError(op, "", err)
	}
	jobs := []model.Job{}
	if company == nil {
		return jobs, nil
	}
	if err := s.DB.WithContext(ctx).Preload("Company").Where("company_id = ?", company.ID).Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, database.TranslateError(op, "", err)
	}
	return jobs, nil
}

func (s *JobService) owned(ctx context.Context, op string, session model.Session, id uint) (model.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return model.Job{}, err
	}
	if job.Company.OwnerID != session.UserID {
		return model.Job{}, apperr.Forbidden(op, "You do not own this job")
	}
	return job, nil
}

// Edit overwrites the non-empty fields of in on a job the caller owns.
func (s *JobService) Edit(ctx context.Context, session model.Session, id uint, in JobInput) (model.Job, error) {
	const op = "job.Edit"

	job, err := s.owned(ctx, op, session, id)
	if err != nil {
		return model.Job{}, err
	}

	if strings.TrimSpace(in.Title) != "" {
		job.Title = strings.TrimSpace(in.Title)
	}
	if in.Description != "" {
		job.Description = in.Description
	}
	if strings.TrimSpace(in.JobType) != "" {
		jobType, ok := model.ParseJobType(in.JobType)
		if !ok {
			return model.Job{}, apperr.Validation(op, fmt.Sprintf("Unknown job type %q", in.JobType))
		}
		job.JobType = jobType
	}
	if in.Location != "" {
		job.Location = strings.TrimSpace(in.Location)
	}
	if in.Compensation != "" {
		job.Compensation = in.Compensation
	}
	if in.Requirements != nil {
		job.Requirements = pq.StringArray(in.Requirements)
	}
	if in.Deadline != nil {
		job.Deadline = in.Deadline
	}

	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Save(&job).Error; err != nil {
		return model.Job{}, database.TranslateError(op, "", err)
	}
	s.invalidateJobs(ctx)
	return job, nil
}

// SetStatus opens or closes a job the caller owns.
func (s *JobService) SetStatus(ctx context.Context, session model.Session, id uint, rawStatus string) (model.Job, error) {
	const op = "job.SetStatus"

	status, ok := model.ParseJobStatus(rawStatus)
	if !ok {
		return model.Job{}, apperr.Validation(op, "Status must be OPEN or CLOSED")
	}
	job, err := s.owned(ctx, op, session, id)
	if err != nil {
		return model.Job{}, err
	}
	job.Status = status
	if err := s.DB.WithContext(ctx).Model(&job).Omit(clause.Associations).Update("status", status).Error; err != nil {
		return model.Job{}, database.TranslateError(op, "", err)
	}
	s.invalidateJobs(ctx)
	return job, nil
}

// listingKey returns the cache key of a filtered listing, or "" when caching is off.
func (s *JobService) listingKey(ctx context.Context, text, jobType, location string) string {
	if s.Cache == nil || s.JobCacheTTL <= 0 {
		return ""
	}
	gen, err := s.Cache.Generation(ctx, jobCacheNamespace)
	if err != nil {
		s.Log.WithError(err).Warn("job cache unavailable")
		return ""
	}
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(text)) + "\x00" + jobType + "\x00" + strings.ToLower(strings.TrimSpace(location))))
	return fmt.Sprintf("%s:%d:%s", jobCacheNamespace, gen, hex.EncodeToString(sum[:]))
}

func (d Deps) invalidateJobs(ctx context.Context) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Bump(ctx, jobCacheNamespace); err != nil {
		d.Log.WithError(err).Warn("job cache invalidation failed")
	}
}
