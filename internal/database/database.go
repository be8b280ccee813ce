package database

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// Table Structure:
//
// CREATE TABLE IF NOT EXISTS users (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	email VARCHAR(255) NOT NULL UNIQUE,
// 	password_hash VARCHAR(100) NOT NULL,
// 	name VARCHAR(100) NOT NULL,
// 	role VARCHAR(20) NOT NULL,
// 	phone VARCHAR(50) NOT NULL DEFAULT '',
// 	location VARCHAR(255) NOT NULL DEFAULT '',
// 	bio TEXT NOT NULL DEFAULT '',
// 	skills TEXT[] NOT NULL DEFAULT '{}',
// 	experience_years INTEGER NOT NULL DEFAULT 0,
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id)
// );
//
// CREATE TABLE IF NOT EXISTS job (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	title VARCHAR(100) NOT NULL,
// 	company VARCHAR(255) NOT NULL,
// 	description TEXT NOT NULL,
// 	requirements TEXT[] NOT NULL DEFAULT '{}',
// 	location VARCHAR(255) NOT NULL,
// 	job_type VARCHAR(20) NOT NULL,
// 	salary_min BIGINT NOT NULL,
// 	salary_max BIGINT NOT NULL,
// 	category VARCHAR(20) NOT NULL,
// 	experience_level VARCHAR(10) NOT NULL,
// 	skills TEXT[] NOT NULL DEFAULT '{}',
// 	posted_by CHAR(27) NOT NULL REFERENCES users(id),
// 	status VARCHAR(10) NOT NULL DEFAULT 'active',
// 	deadline TIMESTAMP,
// 	slug VARCHAR(255) NOT NULL UNIQUE,
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id)
// );
//
// CREATE INDEX job_status_created_at_idx ON job (status, created_at DESC);
// CREATE INDEX job_posted_by_idx ON job (posted_by);
//
// CREATE TABLE IF NOT EXISTS application (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	job_id CHAR(27) NOT NULL REFERENCES job(id),
// 	applicant_id CHAR(27) NOT NULL REFERENCES users(id),
// 	resume VARCHAR(512) NOT NULL,
// 	cover_letter TEXT NOT NULL DEFAULT '',
// 	status VARCHAR(20) NOT NULL DEFAULT 'pending',
// 	notes TEXT NOT NULL DEFAULT '',
// 	applied_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id)
// );
//
// CREATE UNIQUE INDEX application_job_applicant_idx ON application (job_id, applicant_id);
// CREATE INDEX application_applicant_idx ON application (applicant_id);

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(27) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(100) NOT NULL,
		name VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL,
		phone VARCHAR(50) NOT NULL DEFAULT '',
		location VARCHAR(255) NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		skills TEXT[] NOT NULL DEFAULT '{}',
		experience_years INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY(id)
	)`,
	`CREATE TABLE IF NOT EXISTS job (
		id CHAR(27) NOT NULL UNIQUE,
		title VARCHAR(100) NOT NULL,
		company VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		requirements TEXT[] NOT NULL DEFAULT '{}',
		location VARCHAR(255) NOT NULL,
		job_type VARCHAR(20) NOT NULL,
		salary_min BIGINT NOT NULL,
		salary_max BIGINT NOT NULL,
		category VARCHAR(20) NOT NULL,
		experience_level VARCHAR(10) NOT NULL,
		skills TEXT[] NOT NULL DEFAULT '{}',
		posted_by CHAR(27) NOT NULL REFERENCES users(id),
		status VARCHAR(10) NOT NULL DEFAULT 'active',
		deadline TIMESTAMP,
		slug VARCHAR(255) NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY(id)
	)`,
	`CREATE INDEX IF NOT EXISTS job_status_created_at_idx ON job (status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS job_posted_by_idx ON job (posted_by)`,
	`CREATE TABLE IF NOT EXISTS application (
		id CHAR(27) NOT NULL UNIQUE,
		job_id CHAR(27) NOT NULL REFERENCES job(id),
		applicant_id CHAR(27) NOT NULL REFERENCES users(id),
		resume VARCHAR(512) NOT NULL,
		cover_letter TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		notes TEXT NOT NULL DEFAULT '',
		applied_at TIMESTAMP NOT NULL,
		PRIMARY KEY(id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS application_job_applicant_idx ON application (job_id, applicant_id)`,
	`CREATE INDEX IF NOT EXISTS application_applicant_idx ON application (applicant_id)`,
}

func GetDbConn(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open postgres conn")
	}
	err = db.Ping()
	if err != nil {
		return nil, errors.Wrap(err, "unable to ping postgres")
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// Migrate applies the schema. Statements are idempotent so it is safe to run
// at every startup.
func Migrate(conn *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := conn.Exec(stmt); err != nil {
			return errors.Wrapf(err, "unable to run migration %q", stmt[:40])
		}
	}
	return nil
}

// CloseDbConn closes db conn
func CloseDbConn(conn *sql.DB) {
	conn.Close()
}
