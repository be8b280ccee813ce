package main

import (
	"log"
	"net/http"

	"github.com/jobfinder/jobfinder-api/internal/application"
	"github.com/jobfinder/jobfinder-api/internal/config"
	"github.com/jobfinder/jobfinder-api/internal/database"
	"github.com/jobfinder/jobfinder-api/internal/job"
	"github.com/jobfinder/jobfinder-api/internal/middleware"
	"github.com/jobfinder/jobfinder-api/internal/server"
	"github.com/jobfinder/jobfinder-api/internal/user"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// optional in prod, env vars come from the platform there
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load config: %+v", err)
	}
	conn, err := database.GetDbConn(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("unable to connect to postgres: %v", err)
	}
	defer database.CloseDbConn(conn)
	if err := database.Migrate(conn); err != nil {
		log.Fatalf("unable to run migrations: %+v", err)
	}

	userRepo := user.NewRepository(conn)
	jobRepo := job.NewRepository(conn)
	applicationRepo := application.NewRepository(conn)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("unable to hash admin password: %v", err)
		}
		if _, err := userRepo.GetOrCreateAdminUser(cfg.AdminEmail, string(passwordHash)); err != nil {
			log.Fatalf("unable to bootstrap admin user: %+v", err)
		}
	}

	svr := server.NewServer(cfg, conn, mux.NewRouter())
	jwtKey := cfg.JwtSigningKey

	svr.RegisterRoute("/api/health", func(w http.ResponseWriter, r *http.Request) {
		svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}, []string{"GET"})

	//
	// auth routes
	//

	svr.RegisterRoute("/api/auth/register", user.RegisterHandler(svr, userRepo), []string{"POST"})
	svr.RegisterRoute("/api/auth/login", user.LoginHandler(svr, userRepo), []string{"POST"})
	svr.RegisterRoute("/api/auth/me", middleware.AuthenticatedMiddleware(jwtKey, user.MeHandler(svr, userRepo)), []string{"GET"})
	svr.RegisterRoute("/api/users/profile", middleware.AuthenticatedMiddleware(jwtKey, user.UpdateProfileHandler(svr, userRepo)), []string{"PUT"})

	//
	// job routes
	// static paths are registered before /api/jobs/{id} so mux matches them first
	//

	svr.RegisterRoute("/api/jobs/my-jobs", middleware.EmployerAuthenticatedMiddleware(jwtKey, job.MyJobsHandler(svr, jobRepo)), []string{"GET"})
	svr.RegisterRoute("/api/jobs/stats", job.JobStatsHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs/salary-stats", job.SalaryStatsHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs/feed", job.RSSFeedHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs", job.ListJobsHandler(svr, jobRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs", middleware.EmployerAuthenticatedMiddleware(jwtKey, job.CreateJobHandler(svr, jobRepo)), []string{"POST"})
	svr.RegisterRoute("/api/jobs/{id}", job.JobByIDHandler(svr, jobRepo, applicationRepo), []string{"GET"})
	svr.RegisterRoute("/api/jobs/{id}", middleware.EmployerAuthenticatedMiddleware(jwtKey, job.UpdateJobHandler(svr, jobRepo)), []string{"PUT"})
	svr.RegisterRoute("/api/jobs/{id}", middleware.EmployerAuthenticatedMiddleware(jwtKey, job.DeleteJobHandler(svr, jobRepo)), []string{"DELETE"})

	//
	// application routes
	//

	svr.RegisterRoute("/api/applications", middleware.AuthenticatedMiddleware(jwtKey, application.ApplyForJobHandler(svr, applicationRepo)), []string{"POST"})
	svr.RegisterRoute("/api/applications/my-applications", middleware.AuthenticatedMiddleware(jwtKey, application.MyApplicationsHandler(svr, applicationRepo)), []string{"GET"})
	svr.RegisterRoute("/api/applications/job/{jobId}", middleware.AuthenticatedMiddleware(jwtKey, application.JobApplicationsHandler(svr, applicationRepo)), []string{"GET"})
	svr.RegisterRoute("/api/applications/{id}", middleware.AuthenticatedMiddleware(jwtKey, application.UpdateApplicationHandler(svr, applicationRepo)), []string{"PUT"})
	svr.RegisterRoute("/api/applications/{id}", middleware.AuthenticatedMiddleware(jwtKey, application.DeleteApplicationHandler(svr, applicationRepo)), []string{"DELETE"})

	log.Fatal(svr.Run())
}
