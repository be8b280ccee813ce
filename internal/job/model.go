package job

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	StatusActive = "active"
	StatusClosed = "closed"
	StatusDraft  = "draft"
)

var ValidJobTypes = map[string]struct{}{
	"Full-time":  {},
	"Part-time":  {},
	"Contract":   {},
	"Internship": {},
	"Remote":     {},
}

var ValidCategories = map[string]struct{}{
	"Technology": {},
	"Marketing":  {},
	"Sales":      {},
	"Design":     {},
	"Finance":    {},
	"Healthcare": {},
	"Education":  {},
	"Other":      {},
}

var ValidExperienceLevels = map[string]struct{}{
	"Entry":  {},
	"Mid":    {},
	"Senior": {},
	"Lead":   {},
}

var ValidStatuses = map[string]struct{}{
	StatusActive: {},
	StatusClosed: {},
	StatusDraft:  {},
}

type JobPost struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Company          string     `json:"company"`
	Description      string     `json:"description"`
	DescriptionHTML  string     `json:"description_html,omitempty"`
	Requirements     []string   `json:"requirements"`
	Location         string     `json:"location"`
	JobType          string     `json:"job_type"`
	SalaryMin        int64      `json:"salary_min"`
	SalaryMax        int64      `json:"salary_max"`
	Category         string     `json:"category"`
	ExperienceLevel  string     `json:"experience_level"`
	Skills           []string   `json:"skills"`
	PostedBy         string     `json:"posted_by"`
	Status           string     `json:"status"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	Slug             string     `json:"slug"`
	CreatedAt        time.Time  `json:"created_at"`
	PostedAgo        string     `json:"posted_ago,omitempty"`
	ApplicationCount int        `json:"application_count,omitempty"`

	Poster *Poster `json:"poster,omitempty"`
}

// Poster is the public summary of the posting account embedded in job
// responses.
type Poster struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type JobRq struct {
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	Description     string     `json:"description"`
	Requirements    []string   `json:"requirements"`
	Location        string     `json:"location"`
	JobType         string     `json:"job_type"`
	SalaryMin       *int64     `json:"salary_min"`
	SalaryMax       *int64     `json:"salary_max"`
	Category        string     `json:"category"`
	ExperienceLevel string     `json:"experience_level"`
	Skills          []string   `json:"skills"`
	Status          string     `json:"status,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
}

func (rq *JobRq) Validate() error {
	rq.Title = strings.TrimSpace(rq.Title)
	rq.Company = strings.TrimSpace(rq.Company)
	rq.Location = strings.TrimSpace(rq.Location)
	if rq.Title == "" {
		return errors.New("please provide job title")
	}
	if len(rq.Title) > 100 {
		return errors.New("title cannot exceed 100 characters")
	}
	if rq.Company == "" {
		return errors.New("please provide company name")
	}
	if rq.Description == "" {
		return errors.New("please provide job description")
	}
	if len(rq.Description) > 2000 {
		return errors.New("description cannot exceed 2000 characters")
	}
	if rq.Location == "" {
		return errors.New("please provide job location")
	}
	if _, ok := ValidJobTypes[rq.JobType]; !ok {
		return errors.New("please specify a valid job type")
	}
	if rq.SalaryMin == nil {
		return errors.New("please provide minimum salary")
	}
	if rq.SalaryMax == nil {
		return errors.New("please provide maximum salary")
	}
	if *rq.SalaryMin > *rq.SalaryMax {
		return errors.New("minimum salary cannot exceed maximum salary")
	}
	if _, ok := ValidCategories[rq.Category]; !ok {
		return errors.New("please specify a valid job category")
	}
	if _, ok := ValidExperienceLevels[rq.ExperienceLevel]; !ok {
		return errors.New("please specify a valid experience level")
	}
	if rq.Status == "" {
		rq.Status = StatusActive
	}
	if _, ok := ValidStatuses[rq.Status]; !ok {
		return errors.New("please specify a valid status")
	}
	if rq.Requirements == nil {
		rq.Requirements = []string{}
	}
	if rq.Skills == nil {
		rq.Skills = []string{}
	}
	return nil
}

type JobListRes struct {
	Items []*JobPost `json:"items"`
	Page  int        `json:"page"`
	Pages int        `json:"pages"`
	Total int        `json:"total"`
}

type JobStatsRes struct {
	TotalActive int            `json:"total_active"`
	ByCategory  map[string]int `json:"by_category"`
}

type SalaryDataPoint struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

type SalaryStatsRes struct {
	Count     int     `json:"count"`
	P10Min    float64 `json:"p10_min"`
	P10Max    float64 `json:"p10_max"`
	P50Min    float64 `json:"p50_min"`
	P50Max    float64 `json:"p50_max"`
	P90Min    float64 `json:"p90_min"`
	P90Max    float64 `json:"p90_max"`
	MeanMin   float64 `json:"mean_min"`
	MeanMax   float64 `json:"mean_max"`
	StdDevMin float64 `json:"stddev_min"`
	StdDevMax float64 `json:"stddev_max"`
}
