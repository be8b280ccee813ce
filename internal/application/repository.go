package application

import (
	"database/sql"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

var (
	ErrNotFound    = errors.New("application not found")
	ErrJobNotFound = errors.New("job not found")
	// ErrAlreadyApplied is the canonical duplicate error. The pre-check in
	// SaveApplication is only an early exit, the unique index on
	// (job_id, applicant_id) is the authority under concurrent submissions.
	ErrAlreadyApplied = errors.New("you have already applied for this job")

	uniqueViolation = pq.ErrorCode("23505")
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// SaveApplication creates an application for the given job and applicant.
// The parent job existence check, the duplicate pre-check and the insert run
// in one transaction.
func (r *Repository) SaveApplication(rq *ApplicationRq, applicantID string) (*Application, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	var jobPostedBy string
	err = tx.QueryRow(`SELECT posted_by FROM job WHERE id = $1`, rq.JobID).Scan(&jobPostedBy)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return nil, ErrJobNotFound
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	var existing int
	err = tx.QueryRow(`SELECT count(*) FROM application WHERE job_id = $1 AND applicant_id = $2`, rq.JobID, applicantID).Scan(&existing)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if existing > 0 {
		tx.Rollback()
		return nil, ErrAlreadyApplied
	}
	applicationID, err := ksuid.NewRandom()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	appliedAt := time.Now().UTC()
	_, err = tx.Exec(
		`INSERT INTO application (id, job_id, applicant_id, resume, cover_letter, status, applied_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		applicationID.String(), rq.JobID, applicantID, rq.Resume, rq.CoverLetter, StatusPending, appliedAt,
	)
	if err != nil {
		tx.Rollback()
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return nil, ErrAlreadyApplied
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return nil, ErrAlreadyApplied
		}
		return nil, err
	}
	return &Application{
		ID:          applicationID.String(),
		JobID:       rq.JobID,
		ApplicantID: applicantID,
		Resume:      rq.Resume,
		CoverLetter: rq.CoverLetter,
		Status:      StatusPending,
		AppliedAt:   appliedAt,
		AppliedAgo:  humanize.Time(appliedAt),
		jobPostedBy: jobPostedBy,
	}, nil
}

// ApplicationByID loads an application together with the owning account of
// its parent job.
func (r *Repository) ApplicationByID(applicationID string) (*Application, error) {
	a := &Application{}
	row := r.db.QueryRow(
		`SELECT a.id, a.job_id, a.applicant_id, a.resume, a.cover_letter, a.status, a.notes, a.applied_at, j.posted_by
		FROM application a JOIN job j ON j.id = a.job_id
		WHERE a.id = $1`, applicationID,
	)
	err := row.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.Resume, &a.CoverLetter, &a.Status, &a.Notes, &a.AppliedAt, &a.jobPostedBy)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.AppliedAgo = humanize.Time(a.AppliedAt.UTC())
	return a, nil
}

// ApplicationsByApplicant returns the caller's applications with the parent
// job summary, newest first.
func (r *Repository) ApplicationsByApplicant(applicantID string) ([]*Application, error) {
	applications := []*Application{}
	rows, err := r.db.Query(
		`SELECT a.id, a.job_id, a.applicant_id, a.resume, a.cover_letter, a.status, a.notes, a.applied_at, j.id, j.title, j.company, j.location, j.job_type, j.salary_min, j.salary_max
		FROM application a JOIN job j ON j.id = a.job_id
		WHERE a.applicant_id = $1 ORDER BY a.applied_at DESC`, applicantID,
	)
	if err != nil {
		return applications, err
	}
	defer rows.Close()
	for rows.Next() {
		a := &Application{Job: &JobSummary{}}
		err := rows.Scan(
			&a.ID, &a.JobID, &a.ApplicantID, &a.Resume, &a.CoverLetter, &a.Status, &a.Notes, &a.AppliedAt,
			&a.Job.ID, &a.Job.Title, &a.Job.Company, &a.Job.Location, &a.Job.JobType, &a.Job.SalaryMin, &a.Job.SalaryMax,
		)
		if err != nil {
			return applications, err
		}
		a.AppliedAgo = humanize.Time(a.AppliedAt.UTC())
		applications = append(applications, a)
	}
	if err := rows.Err(); err != nil {
		return applications, err
	}
	return applications, nil
}

// ApplicationsByJob returns all applications for a job with the applicant
// summary, newest first. The applications list of a job is always derived
// from this query, never stored on the job row.
func (r *Repository) ApplicationsByJob(jobID string) ([]*Application, error) {
	applications := []*Application{}
	rows, err := r.db.Query(
		`SELECT a.id, a.job_id, a.applicant_id, a.resume, a.cover_letter, a.status, a.notes, a.applied_at, u.id, u.name, u.email, u.phone, u.location, u.skills, u.experience_years
		FROM application a JOIN users u ON u.id = a.applicant_id
		WHERE a.job_id = $1 ORDER BY a.applied_at DESC`, jobID,
	)
	if err != nil {
		return applications, err
	}
	defer rows.Close()
	for rows.Next() {
		a := &Application{Applicant: &ApplicantSummary{}}
		var skills pq.StringArray
		err := rows.Scan(
			&a.ID, &a.JobID, &a.ApplicantID, &a.Resume, &a.CoverLetter, &a.Status, &a.Notes, &a.AppliedAt,
			&a.Applicant.ID, &a.Applicant.Name, &a.Applicant.Email, &a.Applicant.Phone, &a.Applicant.Location, &skills, &a.Applicant.ExperienceYears,
		)
		if err != nil {
			return applications, err
		}
		a.Applicant.Skills = []string(skills)
		if a.Applicant.Skills == nil {
			a.Applicant.Skills = []string{}
		}
		a.AppliedAgo = humanize.Time(a.AppliedAt.UTC())
		applications = append(applications, a)
	}
	if err := rows.Err(); err != nil {
		return applications, err
	}
	return applications, nil
}

// JobPostedBy resolves the owning account of a job, ErrJobNotFound when the
// job does not exist.
func (r *Repository) JobPostedBy(jobID string) (string, error) {
	var postedBy string
	err := r.db.QueryRow(`SELECT posted_by FROM job WHERE id = $1`, jobID).Scan(&postedBy)
	if err == sql.ErrNoRows {
		return "", ErrJobNotFound
	}
	if err != nil {
		return "", err
	}
	return postedBy, nil
}

func (r *Repository) UpdateApplication(applicationID, status, notes string) error {
	res, err := r.db.Exec(
		`UPDATE application SET status = $1, notes = $2 WHERE id = $3`,
		status, notes, applicationID,
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

func (r *Repository) DeleteApplication(applicationID string) error {
	res, err := r.db.Exec(`DELETE FROM application WHERE id = $1`, applicationID)
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
