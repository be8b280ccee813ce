package user

import (
	"database/sql"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrEmailTaken   = errors.New("an account with this email already exists")
	uniqueViolation = pq.ErrorCode("23505")
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) SaveUser(email, passwordHash, name, role string) (*User, error) {
	userID, err := ksuid.NewRandom()
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           userID.String(),
		Email:        email,
		Name:         name,
		Role:         role,
		Skills:       []string{},
		CreatedAt:    time.Now().UTC(),
		passwordHash: passwordHash,
	}
	_, err = r.db.Exec(
		`INSERT INTO users (id, email, password_hash, name, role, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, passwordHash, u.Name, u.Role, u.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	u.CreatedAtHumanised = humanize.Time(u.CreatedAt)
	return u, nil
}

func (r *Repository) UserByEmail(email string) (*User, error) {
	u := &User{}
	row := r.db.QueryRow(
		`SELECT id, email, password_hash, name, role, phone, location, bio, skills, experience_years, created_at FROM users WHERE email = $1`,
		email,
	)
	if err := scanUser(row, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repository) UserByID(id string) (*User, error) {
	u := &User{}
	row := r.db.QueryRow(
		`SELECT id, email, password_hash, name, role, phone, location, bio, skills, experience_years, created_at FROM users WHERE id = $1`,
		id,
	)
	if err := scanUser(row, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile mutates the caller's own profile fields. Email, role and
// password are deliberately not part of this statement.
func (r *Repository) UpdateProfile(userID string, rq *ProfileRqUpdate) error {
	res, err := r.db.Exec(
		`UPDATE users SET name = $1, phone = $2, location = $3, bio = $4, skills = $5, experience_years = $6 WHERE id = $7`,
		rq.Name, rq.Phone, rq.Location, rq.Bio, pq.Array(rq.Skills), rq.ExperienceYears, userID,
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

// GetOrCreateAdminUser makes sure the configured bootstrap admin exists,
// returning it either way.
func (r *Repository) GetOrCreateAdminUser(email, passwordHash string) (*User, error) {
	u, err := r.UserByEmail(email)
	if err == nil {
		return u, nil
	}
	if err != ErrNotFound {
		return nil, err
	}
	return r.SaveUser(email, passwordHash, "Administrator", "admin")
}

func scanUser(row *sql.Row, u *User) error {
	var skills pq.StringArray
	err := row.Scan(&u.ID, &u.Email, &u.passwordHash, &u.Name, &u.Role, &u.Phone, &u.Location, &u.Bio, &skills, &u.ExperienceYears, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	u.Skills = []string(skills)
	if u.Skills == nil {
		u.Skills = []string{}
	}
	u.CreatedAtHumanised = humanize.Time(u.CreatedAt.UTC())
	return nil
}
