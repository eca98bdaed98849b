package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// JobType is the engagement kind of a posting.
type JobType string

// Job types
const (
	JobTypeInternship JobType = "INTERNSHIP"
	JobTypePartTime   JobType = "PARTTIME"
	JobTypeFullTime   JobType = "FULLTIME"
	JobTypeFreelance  JobType = "FREELANCE"
	JobTypeCoop       JobType = "COOP"
)

// JobStatus is open or closed.
type JobStatus string

// Job statuses
const (
	JobStatusOpen   JobStatus = "OPEN"
	JobStatusClosed JobStatus = "CLOSED"
)

// Job sources
const (
	JobSourceDirect     = "direct"
	JobSourceAggregated = "aggregated"
)

// ParseJobType accepts "internship", "part-time", "Full Time", "CO-OP" and the
// canonical upper-case names.
func ParseJobType(raw string) (JobType, bool) {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	normalized := JobType(strings.ToUpper(r.Replace(strings.TrimSpace(raw))))
	switch normalized {
	case JobTypeInternship, JobTypePartTime, JobTypeFullTime, JobTypeFreelance, JobTypeCoop:
		return normalized, true
	}
	return "", false
}

// ParseJobStatus accepts "open"/"closed" in any case.
func ParseJobStatus(raw string) (JobStatus, bool) {
	normalized := JobStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch normalized {
	case JobStatusOpen, JobStatusClosed:
		return normalized, true
	}
	return "", false
}

// EditableJobInfo is the part of a job its owner may write.
type EditableJobInfo struct {
	Title        string         `gorm:"type:text;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	JobType      JobType        `gorm:"type:text;not null;index" json:"job_type"`
	Location     string         `gorm:"type:text" json:"location"`
	Compensation string         `gorm:"type:text" json:"compensation"`
	Requirements pq.StringArray `gorm:"type:text[]" json:"requirements"`
	Deadline     *time.Time     `gorm:"type:timestamp" json:"deadline,omitempty"`
}

// Job is a posting owned by a company.
type Job struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"company_id"`
	Company   Company   `gorm:"foreignKey:CompanyID;references:ID;constraint:OnDelete:CASCADE" json:"company"`
	EditableJobInfo
	Status    JobStatus `gorm:"type:text;not null;default:'OPEN';index" json:"status"`
	Source    string    `gorm:"type:text;not null;default:'direct'" json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobFilter narrows the open job listing.
type JobFilter struct {
	Text     string `form:"text" json:"text"`
	JobType  string `form:"job_type" json:"job_type"`
	Location string `form:"location" json:"location"`
}
