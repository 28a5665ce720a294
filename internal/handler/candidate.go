package handler

import (
	"net/http"

	"github.com/jobsphere/job-board/internal/candidate"
	"github.com/jobsphere/job-board/internal/media"
	"github.com/jobsphere/job-board/internal/middleware"
	"github.com/jobsphere/job-board/internal/savedjobs"
	"github.com/jobsphere/job-board/internal/server"
	"github.com/jobsphere/job-board/internal/user"

	"github.com/gorilla/mux"
)

type UpdateCandidateProfileRq struct {
	Name           string                `json:"name" validate:"omitempty,min=2,max=50"`
	Phone          string                `json:"phone" validate:"omitempty,max=20"`
	Location       string                `json:"location" validate:"omitempty,max=100"`
	ResumeHeadline string                `json:"resume_headline" validate:"omitempty,max=255"`
	ProfileSummary string                `json:"profile_summary"`
	Skills         []string              `json:"skills" validate:"omitempty,dive,max=50"`
	Education      []candidate.Education `json:"education"`
}

func GetCandidateProfileHandler(svr server.Server, candidateRepo *candidate.Repository) http.HandlerFunc {
	return middleware.CandidateAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			cand, err := candidateRepo.CandidateProfileByUserID(profile.UserID)
			if err != nil {
				svr.Log(err, "unable to find candidate profile")
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "profile not found"})
				return
			}
			svr.JSON(w, http.StatusOK, cand)
		})
}

func UpdateCandidateProfileHandler(svr server.Server, candidateRepo *candidate.Repository) http.HandlerFunc {
	return middleware.CandidateAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			var rq UpdateCandidateProfileRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			cand, err := candidateRepo.CandidateProfileByUserID(profile.UserID)
			if err != nil {
				svr.Log(err, "unable to find candidate profile")
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "profile not found"})
				return
			}
			if rq.Name != "" {
				cand.Name = rq.Name
			}
			if rq.Phone != "" {
				cand.Phone = rq.Phone
			}
			if rq.Location != "" {
				cand.Location = rq.Location
			}
			if rq.ResumeHeadline != "" {
				cand.ResumeHeadline = rq.ResumeHeadline
			}
			if rq.ProfileSummary != "" {
				cand.ProfileSummary = rq.ProfileSummary
			}
			if rq.Skills != nil {
				cand.Skills = rq.Skills
			}
			if rq.Education != nil {
				cand.Education = rq.Education
			}
			if err := candidateRepo.UpdateProfile(cand); err != nil {
				svr.Log(err, "unable to update candidate profile")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, cand)
		})
}

type UpdateResumeRq struct {
	ResumeMediaID string `json:"resume_media_id" validate:"required"`
}

// UpdateCandidateResumeHandler points the profile at a previously uploaded
// resume blob.
func UpdateCandidateResumeHandler(svr server.Server, candidateRepo *candidate.Repository) http.HandlerFunc {
	return middleware.CandidateAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			var rq UpdateResumeRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			cand, err := candidateRepo.CandidateProfileByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "profile not found"})
				return
			}
			if err := candidateRepo.UpdateResume(cand.ID, rq.ResumeMediaID); err != nil {
				svr.Log(err, "unable to update candidate resume")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
}

type UpdateMarksheetRq struct {
	MarksheetMediaID string `json:"marksheet_media_id" validate:"required"`
}

// UpdateCandidateMarksheetHandler points the profile at a previously uploaded
// marksheet blob.
func UpdateCandidateMarksheetHandler(svr server.Server, candidateRepo *candidate.Repository) http.HandlerFunc {
	return middleware.CandidateAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			var rq UpdateMarksheetRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			cand, err := candidateRepo.CandidateProfileByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "profile not found"})
				return
			}
			if err := candidateRepo.UpdateMarksheet(cand.ID, rq.MarksheetMediaID); err != nil {
				svr.Log(err, "unable to update candidate marksheet")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
}

// DeleteCandidateProfileHandler removes the profile, its uploaded blobs and
// the auth account, then signs the user off.
func DeleteCandidateProfileHandler(svr server.Server, candidateRepo *candidate.Repository, userRepo *user.Repository, mediaRepo *media.Repository) http.HandlerFunc {
	return middleware.CandidateAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			cand, err := candidateRepo.CandidateProfileByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "profile not found"})
				return
			}
			if err := candidateRepo.DeleteProfile(cand.ID); err != nil {
				svr.Log(err, "unable to delete candidate profile")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			for _, mediaID := range []string{cand.ResumeID, cand.MarksheetID, cand.ImageID} {
				if mediaID == "" {
					continue
				}
				if err := mediaRepo.DeleteMediaByID(mediaID); err != nil {
					svr.Log(err, "unable to delete candidate media")
				}
			}
			if err := userRepo.DeleteUserByEmail(profile.Email); err != nil {
				svr.Log(err, "unable to delete user account")
			}
			if err := svr.SignOffUser(w, r); err != nil {
				svr.Log(err, "unable to sign off user after profile deletion")
			}
			svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
}

func ViewCandidateProfileHandler(svr server.Server, candidateRepo *candidate.Repository) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			cand, err := candidateRepo.CandidateProfileBySlug(vars["slug"])
			if err != nil {
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "profile not found"})
				return
			}
			svr.JSON(w, http.StatusOK, cand)
		})
}

func SaveJobForCandidateHandler(svr server.Server, candidateRepo *candidate.Repository, savedJobsRepo *savedjobs.Repository) http.HandlerFunc {
	return middleware.CandidateAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			vars := mux.Vars(r)
			cand, err := candidateRepo.CandidateProfileByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "candidate profile not found"})
				return
			}
			if err := savedJobsRepo.SaveJob(cand.ID, vars["id"]); err != nil {
				svr.Log(err, "unable to save job for candidate")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
}

func UnsaveJobForCandidateHandler(svr server.Server, candidateRepo *candidate.Repository, savedJobsRepo *savedjobs.Repository) http.HandlerFunc {
	return middleware.CandidateAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			vars := mux.Vars(r)
			cand, err := candidateRepo.CandidateProfileByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "candidate profile not found"})
				return
			}
			if err := savedJobsRepo.UnsaveJob(cand.ID, vars["id"]); err != nil {
				svr.Log(err, "unable to unsave job for candidate")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
}

func SavedJobsForCandidateHandler(svr server.Server, candidateRepo *candidate.Repository, savedJobsRepo *savedjobs.Repository) http.HandlerFunc {
	return middleware.CandidateAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			cand, err := candidateRepo.CandidateProfileByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "candidate profile not found"})
				return
			}
			ids, err := savedJobsRepo.SavedJobIDs(cand.ID)
			if err != nil {
				svr.Log(err, "unable to list saved jobs")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "job_ids": ids})
		})
}
