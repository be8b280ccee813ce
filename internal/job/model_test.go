package job

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJobRq() *JobRq {
	min := int64(50000)
	max := int64(90000)
	return &JobRq{
		Title:           "Senior Go Engineer",
		Company:         "Acme Inc",
		Description:     "Build and operate our backend services.",
		Requirements:    []string{"5 years of Go"},
		Location:        "Berlin",
		JobType:         "Full-time",
		SalaryMin:       &min,
		SalaryMax:       &max,
		Category:        "Technology",
		ExperienceLevel: "Senior",
		Skills:          []string{"go", "postgres"},
	}
}

func TestJobRqValidate(t *testing.T) {
	var tests = []struct {
		name    string
		mutate  func(rq *JobRq)
		wantErr string
	}{
		{"valid request", func(rq *JobRq) {}, ""},
		{"missing title", func(rq *JobRq) { rq.Title = "  " }, "please provide job title"},
		{"title too long", func(rq *JobRq) { rq.Title = strings.Repeat("a", 101) }, "title cannot exceed 100 characters"},
		{"missing company", func(rq *JobRq) { rq.Company = "" }, "please provide company name"},
		{"missing description", func(rq *JobRq) { rq.Description = "" }, "please provide job description"},
		{"description too long", func(rq *JobRq) { rq.Description = strings.Repeat("a", 2001) }, "description cannot exceed 2000 characters"},
		{"missing location", func(rq *JobRq) { rq.Location = "" }, "please provide job location"},
		{"invalid job type", func(rq *JobRq) { rq.JobType = "Freelance" }, "please specify a valid job type"},
		{"missing minimum salary", func(rq *JobRq) { rq.SalaryMin = nil }, "please provide minimum salary"},
		{"missing maximum salary", func(rq *JobRq) { rq.SalaryMax = nil }, "please provide maximum salary"},
		{"min above max", func(rq *JobRq) { *rq.SalaryMin = 100000 }, "minimum salary cannot exceed maximum salary"},
		{"invalid category", func(rq *JobRq) { rq.Category = "Gardening" }, "please specify a valid job category"},
		{"invalid experience level", func(rq *JobRq) { rq.ExperienceLevel = "Wizard" }, "please specify a valid experience level"},
		{"invalid status", func(rq *JobRq) { rq.Status = "archived" }, "please specify a valid status"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rq := validJobRq()
			tc.mutate(rq)
			err := rq.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.wantErr, err.Error())
		})
	}
}

func TestJobRqValidateDefaults(t *testing.T) {
	t.Run("status defaults to active", func(t *testing.T) {
		rq := validJobRq()
		rq.Status = ""
		require.NoError(t, rq.Validate())
		assert.Equal(t, StatusActive, rq.Status)
	})

	t.Run("explicit status is kept", func(t *testing.T) {
		rq := validJobRq()
		rq.Status = StatusDraft
		require.NoError(t, rq.Validate())
		assert.Equal(t, StatusDraft, rq.Status)
	})

	t.Run("nil slices become empty", func(t *testing.T) {
		rq := validJobRq()
		rq.Requirements = nil
		rq.Skills = nil
		require.NoError(t, rq.Validate())
		assert.Equal(t, []string{}, rq.Requirements)
		assert.Equal(t, []string{}, rq.Skills)
	})

	t.Run("equal salary bounds are allowed", func(t *testing.T) {
		rq := validJobRq()
		*rq.SalaryMin = 70000
		*rq.SalaryMax = 70000
		require.NoError(t, rq.Validate())
	})

	t.Run("title and company are trimmed", func(t *testing.T) {
		rq := validJobRq()
		rq.Title = "  Backend Engineer  "
		rq.Company = " Acme "
		require.NoError(t, rq.Validate())
		assert.Equal(t, "Backend Engineer", rq.Title)
		assert.Equal(t, "Acme", rq.Company)
	})
}
