package application

import (
	"encoding/json"
	"net/http"

	"github.com/jobfinder/jobfinder-api/internal/authoriser"
	"github.com/jobfinder/jobfinder-api/internal/middleware"
	"github.com/jobfinder/jobfinder-api/internal/server"

	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
)

func ApplyForJobHandler(svr server.Server, applicationRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromRequest(r, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		req := &ApplicationRq{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.CoverLetter = bluemonday.StrictPolicy().Sanitize(req.CoverLetter)
		if err := req.Validate(); err != nil {
			svr.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		a, err := applicationRepo.SaveApplication(req, actor.ID)
		switch err {
		case nil:
		case ErrJobNotFound:
			svr.JSONError(w, http.StatusNotFound, "job not found")
			return
		case ErrAlreadyApplied:
			svr.JSONError(w, http.StatusBadRequest, err.Error())
			return
		default:
			svr.Log(err, "unable to save application")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusCreated, a)
	}
}

func MyApplicationsHandler(svr server.Server, applicationRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromRequest(r, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		applications, err := applicationRepo.ApplicationsByApplicant(actor.ID)
		if err != nil {
			svr.Log(err, "unable to retrieve applications by applicant")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, applications)
	}
}

// JobApplicationsHandler lists applications for a job, restricted to the
// job's owner or an admin.
func JobApplicationsHandler(svr server.Server, applicationRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromRequest(r, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		vars := mux.Vars(r)
		postedBy, err := applicationRepo.JobPostedBy(vars["jobId"])
		if err == ErrJobNotFound {
			svr.JSONError(w, http.StatusNotFound, "job not found")
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve job owner")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		if !authoriser.CanMutate(actor, postedBy) {
			svr.JSONError(w, http.StatusForbidden, "not authorized to view these applications")
			return
		}
		applications, err := applicationRepo.ApplicationsByJob(vars["jobId"])
		if err != nil {
			svr.Log(err, "unable to retrieve applications by job")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, applications)
	}
}

// UpdateApplicationHandler sets status and notes. The owner for this
// operation is the owning account of the parent job, not the applicant.
func UpdateApplicationHandler(svr server.Server, applicationRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromRequest(r, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		vars := mux.Vars(r)
		a, err := applicationRepo.ApplicationByID(vars["id"])
		if err == ErrNotFound {
			svr.JSONError(w, http.StatusNotFound, "application not found")
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve application by id")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		if !authoriser.CanMutate(actor, a.JobPostedBy()) {
			svr.JSONError(w, http.StatusForbidden, "not authorized to update this application")
			return
		}
		req := &ApplicationRqUpdate{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Notes = bluemonday.StrictPolicy().Sanitize(req.Notes)
		if err := req.Validate(); err != nil {
			svr.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		// absent fields keep their stored values
		if req.Status == "" {
			req.Status = a.Status
		}
		if req.Notes == "" {
			req.Notes = a.Notes
		}
		if err := applicationRepo.UpdateApplication(a.ID, req.Status, req.Notes); err != nil {
			svr.Log(err, "unable to update application")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		updated, err := applicationRepo.ApplicationByID(a.ID)
		if err != nil {
			svr.Log(err, "unable to retrieve application after update")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, updated)
	}
}

// DeleteApplicationHandler withdraws an application. The owner for this
// operation is the applicant, not the job owner.
func DeleteApplicationHandler(svr server.Server, applicationRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromRequest(r, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		vars := mux.Vars(r)
		a, err := applicationRepo.ApplicationByID(vars["id"])
		if err == ErrNotFound {
			svr.JSONError(w, http.StatusNotFound, "application not found")
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve application by id")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		if !authoriser.CanMutate(actor, a.ApplicantID) {
			svr.JSONError(w, http.StatusForbidden, "not authorized to delete this application")
			return
		}
		if err := applicationRepo.DeleteApplication(a.ID); err != nil {
			svr.Log(err, "unable to delete application")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, map[string]string{"message": "application removed"})
	}
}
