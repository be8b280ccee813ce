package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

type Config struct {
	Port          string
	DatabaseURL   string
	JwtSigningKey []byte
	Env           string // either prod or dev, disables https redirect and few other bits
	JobsPerPage   int    // configures how many jobs are shown per page result
	SentryDSN     string // optional, error reporting disabled when empty
	AdminEmail    string // optional, bootstrap admin account created at startup when both are set
	AdminPassword string
	SiteName      string
	SiteHost      string
	SupportEmail  string // displayed in the RSS feed for support queries
}

func LoadConfig() (Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return Config{}, errors.New("PORT cannot be empty")
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return Config{}, errors.New("DATABASE_URL cannot be empty")
	}
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		return Config{}, errors.New("JWT_SIGNING_KEY cannot be empty")
	}
	env := os.Getenv("ENV")
	if env == "" {
		return Config{}, errors.New("ENV cannot be empty")
	}
	jobsPerPage, err := strconv.Atoi(os.Getenv("JOBS_PER_PAGE"))
	if err != nil {
		jobsPerPage = 10
	}
	siteName := os.Getenv("SITE_NAME")
	if siteName == "" {
		siteName = "Job Finder"
	}
	siteHost := os.Getenv("SITE_HOST")
	if siteHost == "" {
		return Config{}, errors.New("SITE_HOST cannot be empty")
	}
	supportEmail := os.Getenv("SUPPORT_EMAIL")
	if supportEmail == "" {
		supportEmail = "support@" + siteHost
	}

	return Config{
		Port:          port,
		DatabaseURL:   databaseURL,
		JwtSigningKey: []byte(jwtSigningKey),
		Env:           env,
		JobsPerPage:   jobsPerPage,
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SiteName:      siteName,
		SiteHost:      siteHost,
		SupportEmail:  supportEmail,
	}, nil
}
