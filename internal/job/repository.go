package job

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

var ErrNotFound = errors.New("job not found")

const jobColumns = `id, title, company, description, requirements, location, job_type, salary_min, salary_max, category, experience_level, skills, posted_by, status, deadline, slug, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// JobsBySearch runs a single filtered, sorted and paginated query. The full
// match count rides along on every row via a window function so no second
// COUNT query is needed.
func (r *Repository) JobsBySearch(f SearchFilter) ([]*JobPost, int, error) {
	jobs := []*JobPost{}
	where, args := f.WhereClause()
	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	args = append(args, f.Limit, f.Offset())
	stmt := fmt.Sprintf(
		`SELECT count(*) OVER() AS full_count, %s FROM job WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, where, limitPos, offsetPos,
	)
	rows, err := r.db.Query(stmt, args...)
	if err != nil {
		return jobs, 0, err
	}
	defer rows.Close()
	var fullRowsCount int
	for rows.Next() {
		job := &JobPost{}
		if err := scanJobWithCount(rows, &fullRowsCount, job); err != nil {
			return jobs, fullRowsCount, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return jobs, fullRowsCount, err
	}
	return jobs, fullRowsCount, nil
}

func (r *Repository) JobByID(jobID string) (*JobPost, error) {
	job := &JobPost{}
	row := r.db.QueryRow(
		`SELECT `+jobColumns+` FROM job WHERE id = $1`, jobID,
	)
	if err := scanJob(row, job); err != nil {
		return nil, err
	}
	return job, nil
}

// JobByIDWithPoster also loads the public summary of the posting account.
func (r *Repository) JobByIDWithPoster(jobID string) (*JobPost, error) {
	job := &JobPost{}
	poster := &Poster{}
	row := r.db.QueryRow(
		`SELECT j.id, j.title, j.company, j.description, j.requirements, j.location, j.job_type, j.salary_min, j.salary_max, j.category, j.experience_level, j.skills, j.posted_by, j.status, j.deadline, j.slug, j.created_at, u.id, u.name, u.email
		FROM job j JOIN users u ON u.id = j.posted_by
		WHERE j.id = $1`, jobID,
	)
	var requirements, skills pq.StringArray
	var deadline pq.NullTime
	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.Description, &requirements, &job.Location,
		&job.JobType, &job.SalaryMin, &job.SalaryMax, &job.Category, &job.ExperienceLevel,
		&skills, &job.PostedBy, &job.Status, &deadline, &job.Slug, &job.CreatedAt,
		&poster.ID, &poster.Name, &poster.Email,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	finishJob(job, requirements, skills, deadline)
	job.Poster = poster
	return job, nil
}

func (r *Repository) SaveJob(rq *JobRq, postedBy string) (*JobPost, error) {
	jobID, err := ksuid.NewRandom()
	if err != nil {
		return nil, err
	}
	createdAt := time.Now().UTC()
	slugTitle := slug.Make(fmt.Sprintf("%s %s %d", rq.Title, rq.Company, createdAt.Unix()))
	_, err = r.db.Exec(
		`INSERT INTO job (id, title, company, description, requirements, location, job_type, salary_min, salary_max, category, experience_level, skills, posted_by, status, deadline, slug, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		jobID.String(), rq.Title, rq.Company, rq.Description, pq.Array(rq.Requirements),
		rq.Location, rq.JobType, *rq.SalaryMin, *rq.SalaryMax, rq.Category,
		rq.ExperienceLevel, pq.Array(rq.Skills), postedBy, rq.Status, rq.Deadline,
		slugTitle, createdAt,
	)
	if err != nil {
		return nil, err
	}
	return r.JobByID(jobID.String())
}

// UpdateJob rewrites the mutable columns. posted_by, slug and created_at are
// immutable after creation.
func (r *Repository) UpdateJob(jobID string, rq *JobRq) error {
	res, err := r.db.Exec(
		`UPDATE job SET title = $1, company = $2, description = $3, requirements = $4, location = $5, job_type = $6, salary_min = $7, salary_max = $8, category = $9, experience_level = $10, skills = $11, status = $12, deadline = $13 WHERE id = $14`,
		rq.Title, rq.Company, rq.Description, pq.Array(rq.Requirements), rq.Location,
		rq.JobType, *rq.SalaryMin, *rq.SalaryMax, rq.Category, rq.ExperienceLevel,
		pq.Array(rq.Skills), rq.Status, rq.Deadline, jobID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteJobCascade removes the job and its applications in one transaction.
func (r *Repository) DeleteJobCascade(jobID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM application WHERE job_id = $1`, jobID); err != nil {
		tx.Rollback()
		return err
	}
	res, err := tx.Exec(`DELETE FROM job WHERE id = $1`, jobID)
	if err != nil {
		tx.Rollback()
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if affected == 0 {
		tx.Rollback()
		return ErrNotFound
	}
	return tx.Commit()
}

// JobsByPoster returns all postings owned by an account, any status, newest
// first, each carrying its application count.
func (r *Repository) JobsByPoster(posterID string) ([]*JobPost, error) {
	jobs := []*JobPost{}
	rows, err := r.db.Query(
		`SELECT (SELECT count(*) FROM application a WHERE a.job_id = j.id) AS application_count, `+prefixColumns("j")+`
		FROM job j WHERE j.posted_by = $1 ORDER BY j.created_at DESC`, posterID,
	)
	if err != nil {
		return jobs, err
	}
	defer rows.Close()
	for rows.Next() {
		job := &JobPost{}
		if err := scanJobWithCount(rows, &job.ApplicationCount, job); err != nil {
			return jobs, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return jobs, err
	}
	return jobs, nil
}

// GetLastNJobs returns the latest active jobs for the RSS feed.
func (r *Repository) GetLastNJobs(max int) ([]*JobPost, error) {
	jobs := []*JobPost{}
	rows, err := r.db.Query(
		`SELECT `+jobColumns+` FROM job WHERE status = 'active' ORDER BY created_at DESC LIMIT $1`, max,
	)
	if err != nil {
		return jobs, err
	}
	defer rows.Close()
	for rows.Next() {
		job := &JobPost{}
		var requirements, skills pq.StringArray
		var deadline pq.NullTime
		err := rows.Scan(
			&job.ID, &job.Title, &job.Company, &job.Description, &requirements, &job.Location,
			&job.JobType, &job.SalaryMin, &job.SalaryMax, &job.Category, &job.ExperienceLevel,
			&skills, &job.PostedBy, &job.Status, &deadline, &job.Slug, &job.CreatedAt,
		)
		if err != nil {
			return jobs, err
		}
		finishJob(job, requirements, skills, deadline)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return jobs, err
	}
	return jobs, nil
}

// CountActiveByCategory feeds the cached stats endpoint.
func (r *Repository) CountActiveByCategory() (map[string]int, int, error) {
	byCategory := map[string]int{}
	total := 0
	rows, err := r.db.Query(`SELECT category, count(*) FROM job WHERE status = 'active' GROUP BY category`)
	if err != nil {
		return byCategory, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return byCategory, total, err
		}
		byCategory[category] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		return byCategory, total, err
	}
	return byCategory, total, nil
}

// SalaryDataForActiveJobs returns the salary bounds of every active job for
// the percentile stats.
func (r *Repository) SalaryDataForActiveJobs() ([]SalaryDataPoint, error) {
	set := []SalaryDataPoint{}
	rows, err := r.db.Query(`SELECT salary_min, salary_max FROM job WHERE status = 'active'`)
	if err != nil {
		return set, err
	}
	defer rows.Close()
	for rows.Next() {
		var p SalaryDataPoint
		if err := rows.Scan(&p.Min, &p.Max); err != nil {
			return set, err
		}
		set = append(set, p)
	}
	if err := rows.Err(); err != nil {
		return set, err
	}
	return set, nil
}

func prefixColumns(alias string) string {
	return fmt.Sprintf(
		`%[1]s.id, %[1]s.title, %[1]s.company, %[1]s.description, %[1]s.requirements, %[1]s.location, %[1]s.job_type, %[1]s.salary_min, %[1]s.salary_max, %[1]s.category, %[1]s.experience_level, %[1]s.skills, %[1]s.posted_by, %[1]s.status, %[1]s.deadline, %[1]s.slug, %[1]s.created_at`,
		alias,
	)
}

func scanJob(row *sql.Row, job *JobPost) error {
	var requirements, skills pq.StringArray
	var deadline pq.NullTime
	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.Description, &requirements, &job.Location,
		&job.JobType, &job.SalaryMin, &job.SalaryMax, &job.Category, &job.ExperienceLevel,
		&skills, &job.PostedBy, &job.Status, &deadline, &job.Slug, &job.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	finishJob(job, requirements, skills, deadline)
	return nil
}

func scanJobWithCount(rows *sql.Rows, count *int, job *JobPost) error {
	var requirements, skills pq.StringArray
	var deadline pq.NullTime
	err := rows.Scan(
		count,
		&job.ID, &job.Title, &job.Company, &job.Description, &requirements, &job.Location,
		&job.JobType, &job.SalaryMin, &job.SalaryMax, &job.Category, &job.ExperienceLevel,
		&skills, &job.PostedBy, &job.Status, &deadline, &job.Slug, &job.CreatedAt,
	)
	if err != nil {
		return err
	}
	finishJob(job, requirements, skills, deadline)
	return nil
}

func finishJob(job *JobPost, requirements, skills pq.StringArray, deadline pq.NullTime) {
	job.Requirements = []string(requirements)
	if job.Requirements == nil {
		job.Requirements = []string{}
	}
	job.Skills = []string(skills)
	if job.Skills == nil {
		job.Skills = []string{}
	}
	if deadline.Valid {
		job.Deadline = &deadline.Time
	}
	job.PostedAgo = humanize.Time(job.CreatedAt.UTC())
}
