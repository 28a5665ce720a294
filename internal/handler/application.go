package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jobsphere/job-board/internal/application"
	"github.com/jobsphere/job-board/internal/candidate"
	"github.com/jobsphere/job-board/internal/email"
	"github.com/jobsphere/job-board/internal/middleware"
	"github.com/jobsphere/job-board/internal/server"

	"github.com/gorilla/mux"
)

// applicationStore is the slice of the application repository the review
// handlers need, kept narrow so tests can swap in a fake.
type applicationStore interface {
	CreateApplication(jobID string, applicant application.ApplicantIdentity, coverLetter string, resume *application.ResumeAttachment) (application.Application, error)
	ChangeStatus(applicationID string, newStatus application.Status, actor application.Actor, notes string) (application.Application, error)
	RecordInterviewRound(applicationID string, round int, name string, status application.RoundStatus, feedback string) (application.Application, error)
	SetSelectedForProcess(applicationID string, flag bool) (application.Application, error)
	SetEmployerRemarks(applicationID string, remarks string) (application.Application, error)
	ApplicationByID(id string) (application.Application, error)
	ApplicationsByCandidate(candidateID string) ([]application.Application, error)
	ApplicationsByJob(jobID string) ([]application.Application, error)
	ApplicationsByEmployer(employerID string) ([]application.Application, error)
}

type candidateGetter interface {
	CandidateProfileByUserID(userID string) (candidate.Candidate, error)
	CandidateProfileByID(id string) (candidate.Candidate, error)
}

type ApplyRq struct {
	JobID       string                        `json:"job_id" validate:"required"`
	CoverLetter string                        `json:"cover_letter"`
	Resume      *application.ResumeAttachment `json:"resume"`
}

type GuestApplyRq struct {
	JobID       string                        `json:"job_id" validate:"required"`
	Name        string                        `json:"applicant_name" validate:"required,min=2,max=255"`
	Email       string                        `json:"applicant_email" validate:"required,email"`
	Phone       string                        `json:"applicant_phone" validate:"required,max=20"`
	CoverLetter string                        `json:"cover_letter"`
	Resume      *application.ResumeAttachment `json:"resume"`
}

type ChangeStatusRq struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

type InterviewRoundRq struct {
	Round    int    `json:"round" validate:"required,gte=1"`
	Name     string `json:"name" validate:"required,max=255"`
	Status   string `json:"status" validate:"required"`
	Feedback string `json:"feedback"`
}

type SelectForProcessRq struct {
	Selected bool `json:"selected"`
}

type EmployerRemarksRq struct {
	Remarks string `json:"remarks" validate:"required"`
}

func respondApplicationError(svr server.Server, w http.ResponseWriter, err error, msg string) {
	switch err {
	case application.ErrNotFound:
		svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": err.Error()})
	case application.ErrDuplicateApplication:
		svr.JSON(w, http.StatusConflict, map[string]string{"status": "error", "message": err.Error()})
	default:
		svr.Log(err, msg)
		svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
	}
}

// ApplyToJobHandler creates an application for the signed-on candidate.
func ApplyToJobHandler(svr server.Server, appStore applicationStore, candidateRepo candidateGetter) http.HandlerFunc {
	return middleware.CandidateAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			var rq ApplyRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			cand, err := candidateRepo.CandidateProfileByUserID(profile.UserID)
			if err != nil {
				svr.Log(err, "unable to find candidate profile for user")
				svr.JSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "candidate profile not found"})
				return
			}
			app, err := appStore.CreateApplication(rq.JobID, application.ApplicantIdentity{CandidateID: cand.ID}, rq.CoverLetter, rq.Resume)
			if err != nil {
				respondApplicationError(svr, w, err, "unable to create application")
				return
			}
			svr.JSON(w, http.StatusCreated, app)
		})
}

// GuestApplyToJobHandler creates an application without an account. Guest
// applications are exempt from the one-application-per-job rule.
func GuestApplyToJobHandler(svr server.Server, appStore applicationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// guests are not signed on so throttle per IP instead
		if svr.SeenSince(r, time.Minute) {
			svr.JSON(w, http.StatusTooManyRequests, map[string]string{"status": "error", "message": "please wait before applying again"})
			return
		}
		var rq GuestApplyRq
		if err := decodeAndValidate(r, &rq); err != nil {
			svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
			return
		}
		guest := &application.GuestApplicant{Name: rq.Name, Email: rq.Email, Phone: rq.Phone}
		app, err := appStore.CreateApplication(rq.JobID, application.ApplicantIdentity{Guest: guest}, rq.CoverLetter, rq.Resume)
		if err != nil {
			respondApplicationError(svr, w, err, "unable to create guest application")
			return
		}
		svr.JSON(w, http.StatusCreated, app)
	}
}

// ChangeApplicationStatusHandler moves an application to a new status and
// notifies the applicant by email, best effort.
func ChangeApplicationStatusHandler(svr server.Server, appStore applicationStore, candidateRepo candidateGetter) http.HandlerFunc {
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
			var rq ChangeStatusRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			newStatus := application.Status(rq.Status)
			if !newStatus.Valid() {
				svr.JSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "invalid application status"})
				return
			}
			actor := application.Actor{ID: profile.UserID, Model: application.ActorModelEmployer}
			if profile.IsAdmin {
				actor.Model = application.ActorModelAdmin
			}
			app, err := appStore.ChangeStatus(vars["id"], newStatus, actor, rq.Notes)
			if err != nil {
				respondApplicationError(svr, w, err, "unable to change application status")
				return
			}
			go notifyApplicantStatusChange(svr, candidateRepo, app)
			svr.JSON(w, http.StatusOK, app)
		})
}

func notifyApplicantStatusChange(svr server.Server, candidateRepo candidateGetter, app application.Application) {
	to := app.ApplicantEmail
	name := app.ApplicantName
	if !app.IsGuestApplication {
		cand, err := candidateRepo.CandidateProfileByID(app.CandidateID)
		if err != nil {
			svr.Log(err, "unable to find candidate for status change notification")
			return
		}
		to = cand.Email
		name = cand.Name
	}
	emailClient := svr.GetEmail()
	err := emailClient.SendHTMLEmail(
		email.Address{Name: emailClient.DefaultSenderName(), Email: emailClient.NoReplySenderAddress()},
		email.Address{Name: name, Email: to},
		email.Address{Email: emailClient.DefaultReplyTo()},
		fmt.Sprintf("Your application status changed to %s", app.Status),
		fmt.Sprintf("Hi %s,<br />the status of your application is now <b>%s</b>.<br /><br />%s", name, app.Status, emailClient.DefaultSenderName()),
	)
	if err != nil {
		svr.Log(err, "unable to send status change notification")
	}
}

// RecordInterviewRoundHandler upserts one interview round by round number.
func RecordInterviewRoundHandler(svr server.Server, appStore applicationStore) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			var rq InterviewRoundRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			roundStatus := application.RoundStatus(rq.Status)
			if !roundStatus.Valid() {
				svr.JSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "invalid interview round status"})
				return
			}
			app, err := appStore.RecordInterviewRound(vars["id"], rq.Round, rq.Name, roundStatus, rq.Feedback)
			if err != nil {
				respondApplicationError(svr, w, err, "unable to record interview round")
				return
			}
			svr.JSON(w, http.StatusOK, app)
		})
}

func SelectForProcessHandler(svr server.Server, appStore applicationStore) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			var rq SelectForProcessRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			app, err := appStore.SetSelectedForProcess(vars["id"], rq.Selected)
			if err != nil {
				respondApplicationError(svr, w, err, "unable to set selected for process")
				return
			}
			svr.JSON(w, http.StatusOK, app)
		})
}

func SetEmployerRemarksHandler(svr server.Server, appStore applicationStore) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			var rq EmployerRemarksRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			app, err := appStore.SetEmployerRemarks(vars["id"], rq.Remarks)
			if err != nil {
				respondApplicationError(svr, w, err, "unable to save employer remarks")
				return
			}
			svr.JSON(w, http.StatusOK, app)
		})
}

func ApplicationByIDHandler(svr server.Server, appStore applicationStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			app, err := appStore.ApplicationByID(vars["id"])
			if err != nil {
				respondApplicationError(svr, w, err, "unable to find application")
				return
			}
			svr.JSON(w, http.StatusOK, app)
		})
}

// MyApplicationsHandler lists the signed-on candidate's applications, newest
// first.
func MyApplicationsHandler(svr server.Server, appStore applicationStore, candidateRepo candidateGetter) http.HandlerFunc {
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
				svr.Log(err, "unable to find candidate profile for user")
				svr.JSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "candidate profile not found"})
				return
			}
			apps, err := appStore.ApplicationsByCandidate(cand.ID)
			if err != nil {
				respondApplicationError(svr, w, err, "unable to list applications for candidate")
				return
			}
			svr.JSON(w, http.StatusOK, apps)
		})
}

func ApplicationsByJobHandler(svr server.Server, appStore applicationStore) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			apps, err := appStore.ApplicationsByJob(vars["id"])
			if err != nil {
				respondApplicationError(svr, w, err, "unable to list applications for job")
				return
			}
			svr.JSON(w, http.StatusOK, apps)
		})
}

func ApplicationsByEmployerHandler(svr server.Server, appStore applicationStore) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			apps, err := appStore.ApplicationsByEmployer(vars["id"])
			if err != nil {
				respondApplicationError(svr, w, err, "unable to list applications for employer")
				return
			}
			svr.JSON(w, http.StatusOK, apps)
		})
}
