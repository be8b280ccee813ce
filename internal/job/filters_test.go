package job

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchFilterFromQuery(t *testing.T) {
	t.Run("empty query yields defaults", func(t *testing.T) {
		f := ParseSearchFilterFromQuery(url.Values{}, 10)
		assert.Equal(t, "", f.Keyword)
		assert.Equal(t, "", f.Location)
		assert.Equal(t, "", f.JobType)
		assert.Nil(t, f.MinSalary)
		assert.Nil(t, f.MaxSalary)
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, 10, f.Limit)
	})

	t.Run("all parameters populated", func(t *testing.T) {
		q := url.Values{}
		q.Set("keyword", "golang")
		q.Set("location", "Berlin")
		q.Set("jobType", "Full-time")
		q.Set("category", "Technology")
		q.Set("experienceLevel", "Senior")
		q.Set("minSalary", "50000")
		q.Set("maxSalary", "90000")
		q.Set("page", "3")
		q.Set("limit", "25")
		f := ParseSearchFilterFromQuery(q, 10)
		assert.Equal(t, "golang", f.Keyword)
		assert.Equal(t, "Berlin", f.Location)
		assert.Equal(t, "Full-time", f.JobType)
		assert.Equal(t, "Technology", f.Category)
		assert.Equal(t, "Senior", f.ExperienceLevel)
		require.NotNil(t, f.MinSalary)
		require.NotNil(t, f.MaxSalary)
		assert.Equal(t, int64(50000), *f.MinSalary)
		assert.Equal(t, int64(90000), *f.MaxSalary)
		assert.Equal(t, 3, f.Page)
		assert.Equal(t, 25, f.Limit)
	})

	t.Run("unknown enum values are kept so equality can match nothing", func(t *testing.T) {
		q := url.Values{}
		q.Set("jobType", "ninja")
		q.Set("category", "tech")
		q.Set("experienceLevel", "wizard")
		f := ParseSearchFilterFromQuery(q, 10)
		assert.Equal(t, "ninja", f.JobType)
		assert.Equal(t, "tech", f.Category)
		assert.Equal(t, "wizard", f.ExperienceLevel)
	})

	t.Run("supplied filter always constrains the query", func(t *testing.T) {
		q := url.Values{}
		q.Set("jobType", "ninja")
		f := ParseSearchFilterFromQuery(q, 10)
		where, args := f.WhereClause()
		assert.Equal(t, "status = 'active' AND job_type = $1", where)
		assert.Equal(t, []interface{}{"ninja"}, args)
	})

	t.Run("non numeric page and limit fall back to defaults", func(t *testing.T) {
		q := url.Values{}
		q.Set("page", "abc")
		q.Set("limit", "many")
		f := ParseSearchFilterFromQuery(q, 10)
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, 10, f.Limit)
	})

	t.Run("non positive page and limit fall back to defaults", func(t *testing.T) {
		q := url.Values{}
		q.Set("page", "0")
		q.Set("limit", "-5")
		f := ParseSearchFilterFromQuery(q, 10)
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, 10, f.Limit)
	})

	t.Run("non numeric salary bounds are dropped", func(t *testing.T) {
		q := url.Values{}
		q.Set("minSalary", "lots")
		q.Set("maxSalary", "")
		f := ParseSearchFilterFromQuery(q, 10)
		assert.Nil(t, f.MinSalary)
		assert.Nil(t, f.MaxSalary)
	})

	t.Run("keyword and location are trimmed", func(t *testing.T) {
		q := url.Values{}
		q.Set("keyword", "  react  ")
		q.Set("location", " London ")
		f := ParseSearchFilterFromQuery(q, 10)
		assert.Equal(t, "react", f.Keyword)
		assert.Equal(t, "London", f.Location)
	})
}

func TestWhereClause(t *testing.T) {
	t.Run("empty filter only constrains status", func(t *testing.T) {
		where, args := SearchFilter{}.WhereClause()
		assert.Equal(t, "status = 'active'", where)
		assert.Empty(t, args)
	})

	t.Run("keyword matches title description and company with one arg", func(t *testing.T) {
		where, args := SearchFilter{Keyword: "golang"}.WhereClause()
		assert.Equal(t, "status = 'active' AND (title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%' OR company ILIKE '%' || $1 || '%')", where)
		assert.Equal(t, []interface{}{"golang"}, args)
	})

	t.Run("location is a substring match", func(t *testing.T) {
		where, args := SearchFilter{Location: "Berlin"}.WhereClause()
		assert.Equal(t, "status = 'active' AND location ILIKE '%' || $1 || '%'", where)
		assert.Equal(t, []interface{}{"Berlin"}, args)
	})

	t.Run("enums are exact matches", func(t *testing.T) {
		where, args := SearchFilter{JobType: "Remote", Category: "Design", ExperienceLevel: "Mid"}.WhereClause()
		assert.Equal(t, "status = 'active' AND job_type = $1 AND category = $2 AND experience_level = $3", where)
		assert.Equal(t, []interface{}{"Remote", "Design", "Mid"}, args)
	})

	t.Run("salary bounds are independent per field", func(t *testing.T) {
		min := int64(40000)
		max := int64(80000)
		where, args := SearchFilter{MinSalary: &min, MaxSalary: &max}.WhereClause()
		assert.Equal(t, "status = 'active' AND salary_min >= $1 AND salary_max <= $2", where)
		assert.Equal(t, []interface{}{int64(40000), int64(80000)}, args)
	})

	t.Run("min salary alone constrains only the lower bound", func(t *testing.T) {
		min := int64(60000)
		where, args := SearchFilter{MinSalary: &min}.WhereClause()
		assert.Equal(t, "status = 'active' AND salary_min >= $1", where)
		assert.Equal(t, []interface{}{int64(60000)}, args)
	})

	t.Run("all filters combine with AND and sequential placeholders", func(t *testing.T) {
		min := int64(40000)
		max := int64(80000)
		f := SearchFilter{
			Keyword:         "go",
			Location:        "Remote",
			JobType:         "Full-time",
			Category:        "Technology",
			ExperienceLevel: "Senior",
			MinSalary:       &min,
			MaxSalary:       &max,
		}
		where, args := f.WhereClause()
		assert.Equal(t,
			"status = 'active' AND "+
				"(title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%' OR company ILIKE '%' || $1 || '%') AND "+
				"location ILIKE '%' || $2 || '%' AND "+
				"job_type = $3 AND "+
				"category = $4 AND "+
				"experience_level = $5 AND "+
				"salary_min >= $6 AND "+
				"salary_max <= $7",
			where,
		)
		assert.Equal(t, []interface{}{"go", "Remote", "Full-time", "Technology", "Senior", int64(40000), int64(80000)}, args)
	})
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, SearchFilter{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 10, SearchFilter{Page: 2, Limit: 10}.Offset())
	assert.Equal(t, 50, SearchFilter{Page: 11, Limit: 5}.Offset())
}

func TestTotalPages(t *testing.T) {
	var tests = []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{"no results", 0, 10, 0},
		{"exact multiple", 20, 10, 2},
		{"partial last page", 21, 10, 3},
		{"fewer results than limit", 3, 10, 1},
		{"limit of one", 5, 1, 5},
		{"zero limit", 5, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TotalPages(tc.total, tc.limit))
		})
	}
}
