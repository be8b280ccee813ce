package user

import (
	"strings"
	"time"

	"github.com/jobfinder/jobfinder-api/internal/authoriser"

	"github.com/pkg/errors"
)

type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	Phone              string    `json:"phone,omitempty"`
	Location           string    `json:"location,omitempty"`
	Bio                string    `json:"bio,omitempty"`
	Skills             []string  `json:"skills"`
	ExperienceYears    int       `json:"experience_years"`
	CreatedAt          time.Time `json:"created_at"`
	CreatedAtHumanised string    `json:"member_since,omitempty"`

	passwordHash string
}

func (u *User) PasswordHash() string {
	return u.passwordHash
}

type RegisterRq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (rq *RegisterRq) Validate() error {
	rq.Email = strings.ToLower(strings.TrimSpace(rq.Email))
	rq.Name = strings.TrimSpace(rq.Name)
	if rq.Email == "" {
		return errors.New("please provide an email")
	}
	if rq.Name == "" {
		return errors.New("please provide a name")
	}
	if len(rq.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if rq.Role == "" {
		rq.Role = authoriser.RoleJobSeeker
	}
	// admins are bootstrapped from config, never self-registered
	if rq.Role != authoriser.RoleJobSeeker && rq.Role != authoriser.RoleEmployer {
		return errors.New("role must be either jobseeker or employer")
	}
	return nil
}

type LoginRq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileRqUpdate struct {
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	Location        string   `json:"location"`
	Bio             string   `json:"bio"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
}

func (rq *ProfileRqUpdate) Validate() error {
	rq.Name = strings.TrimSpace(rq.Name)
	if rq.Name == "" {
		return errors.New("please provide a name")
	}
	if rq.ExperienceYears < 0 {
		return errors.New("experience years cannot be negative")
	}
	if len(rq.Skills) > 20 {
		return errors.New("too many skills")
	}
	if rq.Skills == nil {
		rq.Skills = []string{}
	}
	return nil
}

type AuthRes struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
