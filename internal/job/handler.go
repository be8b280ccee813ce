package job

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/jobfinder/jobfinder-api/internal/application"
	"github.com/jobfinder/jobfinder-api/internal/authoriser"
	"github.com/jobfinder/jobfinder-api/internal/middleware"
	"github.com/jobfinder/jobfinder-api/internal/server"

	"github.com/aclements/go-moremath/stats"
	"github.com/gorilla/feeds"
	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
)

func ListJobsHandler(svr server.Server, jobRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ParseSearchFilterFromQuery(r.URL.Query(), svr.GetConfig().JobsPerPage)
		jobs, total, err := jobRepo.JobsBySearch(filter)
		if err != nil {
			svr.Log(err, "unable to retrieve jobs by search")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, JobListRes{
			Items: jobs,
			Page:  filter.Page,
			Pages: TotalPages(total, filter.Limit),
			Total: total,
		})
	}
}

// JobByIDHandler returns one job with the poster summary, the rendered
// description and the applications derived from the application table.
func JobByIDHandler(svr server.Server, jobRepo *Repository, applicationRepo *application.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		job, err := jobRepo.JobByIDWithPoster(vars["id"])
		if err == ErrNotFound {
			svr.JSONError(w, http.StatusNotFound, "job not found")
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve job by id")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		job.DescriptionHTML = svr.MarkdownToHTML(job.Description)
		applications, err := applicationRepo.ApplicationsByJob(job.ID)
		if err != nil {
			svr.Log(err, "unable to retrieve applications for job")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, struct {
			*JobPost
			Applications []*application.Application `json:"applications"`
		}{job, applications})
	}
}

func CreateJobHandler(svr server.Server, jobRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromRequest(r, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		req := &JobRq{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Title = bluemonday.StrictPolicy().Sanitize(req.Title)
		req.Company = bluemonday.StrictPolicy().Sanitize(req.Company)
		req.Location = bluemonday.StrictPolicy().Sanitize(req.Location)
		if err := req.Validate(); err != nil {
			svr.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		job, err := jobRepo.SaveJob(req, actor.ID)
		if err != nil {
			svr.Log(err, "unable to save job")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusCreated, job)
	}
}

func UpdateJobHandler(svr server.Server, jobRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromRequest(r, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		vars := mux.Vars(r)
		// existence strictly before authorization, a missing job is 404 not 403
		job, err := jobRepo.JobByID(vars["id"])
		if err == ErrNotFound {
			svr.JSONError(w, http.StatusNotFound, "job not found")
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve job by id")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		if !authoriser.CanMutate(actor, job.PostedBy) {
			svr.JSONError(w, http.StatusForbidden, "not authorized to update this job")
			return
		}
		// partial update, fields absent from the body keep their stored values
		req := updateRqFromJob(job)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Title = bluemonday.StrictPolicy().Sanitize(req.Title)
		req.Company = bluemonday.StrictPolicy().Sanitize(req.Company)
		req.Location = bluemonday.StrictPolicy().Sanitize(req.Location)
		if err := req.Validate(); err != nil {
			svr.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := jobRepo.UpdateJob(job.ID, req); err != nil {
			svr.Log(err, "unable to update job")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		updated, err := jobRepo.JobByID(job.ID)
		if err != nil {
			svr.Log(err, "unable to retrieve job after update")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, updated)
	}
}

// updateRqFromJob pre-fills an update request with the stored row so a PUT
// body only needs the fields it changes.
func updateRqFromJob(job *JobPost) *JobRq {
	salaryMin := job.SalaryMin
	salaryMax := job.SalaryMax
	return &JobRq{
		Title:           job.Title,
		Company:         job.Company,
		Description:     job.Description,
		Requirements:    job.Requirements,
		Location:        job.Location,
		JobType:         job.JobType,
		SalaryMin:       &salaryMin,
		SalaryMax:       &salaryMax,
		Category:        job.Category,
		ExperienceLevel: job.ExperienceLevel,
		Skills:          job.Skills,
		Status:          job.Status,
		Deadline:        job.Deadline,
	}
}

func DeleteJobHandler(svr server.Server, jobRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromRequest(r, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		vars := mux.Vars(r)
		job, err := jobRepo.JobByID(vars["id"])
		if err == ErrNotFound {
			svr.JSONError(w, http.StatusNotFound, "job not found")
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve job by id")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		if !authoriser.CanMutate(actor, job.PostedBy) {
			svr.JSONError(w, http.StatusForbidden, "not authorized to delete this job")
			return
		}
		if err := jobRepo.DeleteJobCascade(job.ID); err != nil {
			svr.Log(err, "unable to delete job")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, map[string]string{"message": "job removed"})
	}
}

func MyJobsHandler(svr server.Server, jobRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromRequest(r, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		jobs, err := jobRepo.JobsByPoster(actor.ID)
		if err != nil {
			svr.Log(err, "unable to retrieve jobs by poster")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, jobs)
	}
}

// JobStatsHandler serves aggregate counts for the SPA home page, cached for
// the bigcache TTL.
func JobStatsHandler(svr server.Server, jobRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cached, ok := svr.CacheGet(server.CacheKeyJobStats); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
		byCategory, total, err := jobRepo.CountActiveByCategory()
		if err != nil {
			svr.Log(err, "unable to count active jobs by category")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		res := JobStatsRes{TotalActive: total, ByCategory: byCategory}
		buf, err := json.Marshal(res)
		if err != nil {
			svr.Log(err, "unable to marshal job stats")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		if err := svr.CacheSet(server.CacheKeyJobStats, buf); err != nil {
			svr.Log(err, "unable to cache job stats")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(buf)
	}
}

// SalaryStatsHandler reports percentile bounds over the salary ranges of all
// active jobs.
func SalaryStatsHandler(svr server.Server, jobRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := jobRepo.SalaryDataForActiveJobs()
		if err != nil {
			svr.Log(err, "unable to retrieve salary data for active jobs")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		if len(set) == 0 {
			svr.JSON(w, http.StatusOK, SalaryStatsRes{})
			return
		}
		var sampleMin, sampleMax stats.Sample
		for _, x := range set {
			sampleMin.Xs = append(sampleMin.Xs, float64(x.Min))
			sampleMax.Xs = append(sampleMax.Xs, float64(x.Max))
		}
		svr.JSON(w, http.StatusOK, SalaryStatsRes{
			Count:     len(set),
			P10Min:    math.Round(sampleMin.Quantile(0.1)),
			P10Max:    math.Round(sampleMax.Quantile(0.1)),
			P50Min:    math.Round(sampleMin.Quantile(0.5)),
			P50Max:    math.Round(sampleMax.Quantile(0.5)),
			P90Min:    math.Round(sampleMin.Quantile(0.9)),
			P90Max:    math.Round(sampleMax.Quantile(0.9)),
			MeanMin:   math.Round(sampleMin.Mean()),
			MeanMax:   math.Round(sampleMax.Mean()),
			StdDevMin: math.Round(sampleMin.StdDev()),
			StdDevMax: math.Round(sampleMax.StdDev()),
		})
	}
}

// RSSFeedHandler serves the latest active jobs as RSS.
func RSSFeedHandler(svr server.Server, jobRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobPosts, err := jobRepo.GetLastNJobs(50)
		if err != nil {
			svr.Log(err, "unable to retrieve jobs for RSS feed")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		cfg := svr.GetConfig()
		now := time.Now()
		feed := &feeds.Feed{
			Title:       fmt.Sprintf("%s Jobs", cfg.SiteName),
			Link:        &feeds.Link{Href: fmt.Sprintf("https://%s", cfg.SiteHost)},
			Description: fmt.Sprintf("%s Jobs", cfg.SiteName),
			Author:      &feeds.Author{Name: cfg.SiteName, Email: cfg.SupportEmail},
			Created:     now,
		}
		for _, j := range jobPosts {
			feed.Items = append(feed.Items, &feeds.Item{
				Id:          j.ID,
				Title:       fmt.Sprintf("%s with %s - %s", j.Title, j.Company, j.Location),
				Link:        &feeds.Link{Href: fmt.Sprintf("https://%s/jobs/%s", cfg.SiteHost, j.ID)},
				Description: svr.MarkdownToHTML(j.Description),
				Author:      &feeds.Author{Name: cfg.SiteName, Email: cfg.SupportEmail},
				Created:     j.CreatedAt,
			})
		}
		rssFeed, err := feed.ToRss()
		if err != nil {
			svr.Log(err, "unable to convert feed to RSS")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		svr.XML(w, http.StatusOK, []byte(rssFeed))
	}
}
