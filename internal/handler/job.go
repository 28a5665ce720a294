package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jobsphere/job-board/internal/employer"
	"github.com/jobsphere/job-board/internal/job"
	"github.com/jobsphere/job-board/internal/middleware"
	"github.com/jobsphere/job-board/internal/server"

	"github.com/gorilla/mux"
)

// PostAJobHandler saves a job draft for the signed-on, verified employer.
// Drafts go live once an admin approves them.
func PostAJobHandler(svr server.Server, jobRepo *job.Repository, employerRepo *employer.Repository) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			var rq job.JobRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			emp, err := employerRepo.EmployerByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "employer profile not found"})
				return
			}
			if emp.VerificationStatus != employer.VerificationVerified {
				svr.JSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "employer is not verified yet"})
				return
			}
			j, err := jobRepo.SaveDraft(emp.ID, emp.CompanyName, &rq)
			if err != nil {
				svr.Log(err, "unable to save job draft")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusCreated, j)
		})
}

func UpdateJobHandler(svr server.Server, jobRepo *job.Repository, employerRepo *employer.Repository) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			vars := mux.Vars(r)
			var rq job.JobRqUpdate
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			j, err := jobRepo.JobByID(vars["id"])
			if err != nil {
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "job not found"})
				return
			}
			if !profile.IsAdmin {
				emp, err := employerRepo.EmployerByUserID(profile.UserID)
				if err != nil || emp.ID != j.EmployerID {
					svr.JSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "job belongs to another employer"})
					return
				}
			}
			if err := jobRepo.UpdateJob(vars["id"], &rq); err != nil {
				svr.Log(err, "unable to update job")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.CacheDelete(server.CacheKeyLandingJobs)
			svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
}

func ApproveJobHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			if err := jobRepo.ApproveJob(vars["id"]); err != nil {
				svr.Log(err, "unable to approve job")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.CacheDelete(server.CacheKeyLandingJobs)
			svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
}

func ExpireJobHandler(svr server.Server, jobRepo *job.Repository, employerRepo *employer.Repository) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			vars := mux.Vars(r)
			j, err := jobRepo.JobByID(vars["id"])
			if err != nil {
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "job not found"})
				return
			}
			if !profile.IsAdmin {
				emp, err := employerRepo.EmployerByUserID(profile.UserID)
				if err != nil || emp.ID != j.EmployerID {
					svr.JSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "job belongs to another employer"})
					return
				}
			}
			if err := jobRepo.ExpireJob(vars["id"]); err != nil {
				svr.Log(err, "unable to expire job")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.CacheDelete(server.CacheKeyLandingJobs)
			svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
}

func JobBySlugHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		j, err := jobRepo.JobBySlug(vars["slug"])
		if err != nil {
			svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "job not found"})
			return
		}
		svr.JSON(w, http.StatusOK, j)
	}
}

type jobListPage struct {
	Jobs       []job.Job `json:"jobs"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
}

// ListJobsHandler serves the public job list. The unfiltered first page is the
// landing page and gets cached.
func ListJobsHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		location := r.URL.Query().Get("location")
		keyword := r.URL.Query().Get("q")
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		perPage := svr.GetConfig().JobsPerPage

		cacheable := location == "" && keyword == "" && page == 1
		if cacheable {
			if cached, ok := svr.CacheGet(server.CacheKeyLandingJobs); ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write(cached)
				return
			}
		}
		jobs, total, err := jobRepo.ApprovedJobs(location, keyword, page, perPage)
		if err != nil {
			svr.Log(err, "unable to list approved jobs")
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		out := jobListPage{Jobs: jobs, TotalCount: total, Page: page, PerPage: perPage}
		if cacheable {
			if buf, err := json.Marshal(out); err == nil {
				svr.CacheSet(server.CacheKeyLandingJobs, buf)
			}
		}
		svr.JSON(w, http.StatusOK, out)
	}
}

// JobStatsHandler serves the "N new jobs this week" landing page counter.
func JobStatsHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cached, ok := svr.CacheGet(server.CacheKeyNewJobsLastWeek); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
		count, err := jobRepo.NewJobsLastWeek()
		if err != nil {
			svr.Log(err, "unable to count new jobs for last week")
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		out := map[string]int{"new_jobs_last_week": count}
		if buf, err := json.Marshal(out); err == nil {
			svr.CacheSet(server.CacheKeyNewJobsLastWeek, buf)
		}
		svr.JSON(w, http.StatusOK, out)
	}
}

func JobsByEmployerHandler(svr server.Server, jobRepo *job.Repository, employerRepo *employer.Repository) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			emp, err := employerRepo.EmployerByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "employer profile not found"})
				return
			}
			jobs, err := jobRepo.JobsByEmployer(emp.ID)
			if err != nil {
				svr.Log(err, "unable to list jobs for employer")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, jobs)
		})
}

func PendingApprovalJobsHandler(svr server.Server, jobRepo *job.Repository) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			jobs, err := jobRepo.PendingApprovalJobs()
			if err != nil {
				svr.Log(err, "unable to list jobs pending approval")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, jobs)
		})
}
