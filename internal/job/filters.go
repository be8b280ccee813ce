package job

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SearchFilter is the typed form of the public job search parameters. Absent
// fields impose no constraint; present ones are AND-ed together by
// WhereClause.
type SearchFilter struct {
	Keyword         string
	Location        string
	JobType         string
	Category        string
	ExperienceLevel string
	MinSalary       *int64
	MaxSalary       *int64
	Page            int
	Limit           int
}

// ParseSearchFilterFromQuery builds a SearchFilter from the request query
// string. Enum parameters are passed through verbatim, a supplied value
// outside the known set matches no rows rather than widening the result.
// Page and limit fall back to their defaults on anything that is not a
// positive integer.
func ParseSearchFilterFromQuery(query url.Values, defaultLimit int) SearchFilter {
	f := SearchFilter{
		Keyword:         strings.TrimSpace(query.Get("keyword")),
		Location:        strings.TrimSpace(query.Get("location")),
		JobType:         query.Get("jobType"),
		Category:        query.Get("category"),
		ExperienceLevel: query.Get("experienceLevel"),
		Page:            1,
		Limit:           defaultLimit,
	}
	if minSalary, err := strconv.ParseInt(query.Get("minSalary"), 10, 64); err == nil {
		f.MinSalary = &minSalary
	}
	if maxSalary, err := strconv.ParseInt(query.Get("maxSalary"), 10, 64); err == nil {
		f.MaxSalary = &maxSalary
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		f.Limit = limit
	}
	return f
}

// WhereClause maps the filter onto a single WHERE clause with positional
// args. Public searches only ever see active jobs. The keyword matches if any
// of title, description or company contains it; minSalary and maxSalary each
// check their own bound only, the pair is deliberately not a range-overlap
// test.
func (f SearchFilter) WhereClause() (string, []interface{}) {
	conditions := []string{"status = 'active'"}
	args := []interface{}{}
	next := func() string { return fmt.Sprintf("$%d", len(args)+1) }

	if f.Keyword != "" {
		args = append(args, f.Keyword)
		p := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE '%%' || %s || '%%' OR description ILIKE '%%' || %s || '%%' OR company ILIKE '%%' || %s || '%%')",
			p, p, p,
		))
	}
	if f.Location != "" {
		conditions = append(conditions, "location ILIKE '%' || "+next()+" || '%'")
		args = append(args, f.Location)
	}
	if f.JobType != "" {
		conditions = append(conditions, "job_type = "+next())
		args = append(args, f.JobType)
	}
	if f.Category != "" {
		conditions = append(conditions, "category = "+next())
		args = append(args, f.Category)
	}
	if f.ExperienceLevel != "" {
		conditions = append(conditions, "experience_level = "+next())
		args = append(args, f.ExperienceLevel)
	}
	if f.MinSalary != nil {
		conditions = append(conditions, "salary_min >= "+next())
		args = append(args, *f.MinSalary)
	}
	if f.MaxSalary != nil {
		conditions = append(conditions, "salary_max <= "+next())
		args = append(args, *f.MaxSalary)
	}

	return strings.Join(conditions, " AND "), args
}

func (f SearchFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
