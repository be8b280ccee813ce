package application

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	StatusPending     = "pending"
	StatusReviewing   = "reviewing"
	StatusShortlisted = "shortlisted"
	StatusRejected    = "rejected"
	StatusAccepted    = "accepted"
)

// Any status may be set from any other, the review workflow is deliberately
// not a forward-only pipeline.
var ValidStatuses = map[string]struct{}{
	StatusPending:     {},
	StatusReviewing:   {},
	StatusShortlisted: {},
	StatusRejected:    {},
	StatusAccepted:    {},
}

type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	ApplicantID string    `json:"applicant_id"`
	Resume      string    `json:"resume"`
	CoverLetter string    `json:"cover_letter,omitempty"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	AppliedAt   time.Time `json:"applied_at"`
	AppliedAgo  string    `json:"applied_ago,omitempty"`

	Job       *JobSummary       `json:"job,omitempty"`
	Applicant *ApplicantSummary `json:"applicant,omitempty"`

	// jobPostedBy is the owning account of the parent job, joined in for the
	// authorization check on status updates.
	jobPostedBy string
}

func (a *Application) JobPostedBy() string {
	return a.jobPostedBy
}

// JobSummary is the slice of the parent job embedded in an applicant's own
// application list.
type JobSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Location  string `json:"location"`
	JobType   string `json:"job_type"`
	SalaryMin int64  `json:"salary_min"`
	SalaryMax int64  `json:"salary_max"`
}

// ApplicantSummary is the slice of the applicant account embedded in the
// employer's per-job application list.
type ApplicantSummary struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	Location        string   `json:"location,omitempty"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
}

type ApplicationRq struct {
	JobID       string `json:"job_id"`
	Resume      string `json:"resume"`
	CoverLetter string `json:"cover_letter,omitempty"`
}

func (rq *ApplicationRq) Validate() error {
	rq.JobID = strings.TrimSpace(rq.JobID)
	rq.Resume = strings.TrimSpace(rq.Resume)
	if rq.JobID == "" {
		return errors.New("please provide a job id")
	}
	if rq.Resume == "" {
		return errors.New("please upload your resume")
	}
	if len(rq.CoverLetter) > 1000 {
		return errors.New("cover letter cannot exceed 1000 characters")
	}
	return nil
}

type ApplicationRqUpdate struct {
	Status string `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

func (rq *ApplicationRqUpdate) Validate() error {
	if rq.Status != "" {
		if _, ok := ValidStatuses[rq.Status]; !ok {
			return errors.New("please specify a valid application status")
		}
	}
	return nil
}
