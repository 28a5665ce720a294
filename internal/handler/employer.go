package handler

import (
	"fmt"
	"net/http"

	"github.com/jobsphere/job-board/internal/email"
	"github.com/jobsphere/job-board/internal/employer"
	"github.com/jobsphere/job-board/internal/middleware"
	"github.com/jobsphere/job-board/internal/server"

	"github.com/gorilla/mux"
)

type UpdateEmployerProfileRq struct {
	CompanyName string `json:"company_name" validate:"omitempty,max=255"`
	Website     string `json:"website" validate:"omitempty,url,max=255"`
	Description string `json:"description"`
}

type SubmitDocumentRq struct {
	MediaID      string `json:"media_id" validate:"required"`
	DocumentType string `json:"document_type" validate:"required,max=50"`
}

type VerificationDecisionRq struct {
	Remark string `json:"remark" validate:"omitempty,max=500"`
}

func GetEmployerProfileHandler(svr server.Server, employerRepo *employer.Repository) http.HandlerFunc {
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
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "employer profile not found"})
				return
			}
			svr.JSON(w, http.StatusOK, emp)
		})
}

func UpdateEmployerProfileHandler(svr server.Server, employerRepo *employer.Repository) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			var rq UpdateEmployerProfileRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			emp, err := employerRepo.EmployerByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "employer profile not found"})
				return
			}
			if rq.CompanyName != "" {
				emp.CompanyName = rq.CompanyName
			}
			if rq.Website != "" {
				emp.Website = rq.Website
			}
			if rq.Description != "" {
				emp.Description = rq.Description
			}
			if err := employerRepo.UpdateEmployer(emp); err != nil {
				svr.Log(err, "unable to update employer profile")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, emp)
		})
}

// ViewEmployerProfileHandler is the public company page, looked up by slug.
func ViewEmployerProfileHandler(svr server.Server, employerRepo *employer.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		emp, err := employerRepo.EmployerBySlug(vars["slug"])
		if err != nil {
			svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "employer profile not found"})
			return
		}
		svr.JSON(w, http.StatusOK, emp)
	}
}

// SubmitEmployerDocumentHandler registers an uploaded verification document
// for admin review.
func SubmitEmployerDocumentHandler(svr server.Server, employerRepo *employer.Repository) http.HandlerFunc {
	return middleware.EmployerAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			var rq SubmitDocumentRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			emp, err := employerRepo.EmployerByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "employer profile not found"})
				return
			}
			doc, err := employerRepo.SaveDocument(emp.ID, rq.MediaID, rq.DocumentType)
			if err != nil {
				svr.Log(err, "unable to save employer document")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusCreated, doc)
		})
}

// PendingEmployerVerificationsHandler lists employers awaiting an admin
// decision, with their submitted documents.
func PendingEmployerVerificationsHandler(svr server.Server, employerRepo *employer.Repository) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			employers, err := employerRepo.PendingVerification()
			if err != nil {
				svr.Log(err, "unable to list pending employer verifications")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			type pendingEmployer struct {
				Employer  employer.Employer   `json:"employer"`
				Documents []employer.Document `json:"documents"`
			}
			out := []pendingEmployer{}
			for _, emp := range employers {
				docs, err := employerRepo.DocumentsByEmployer(emp.ID)
				if err != nil {
					svr.Log(err, "unable to list documents for employer")
					docs = []employer.Document{}
				}
				out = append(out, pendingEmployer{Employer: emp, Documents: docs})
			}
			svr.JSON(w, http.StatusOK, out)
		})
}

func VerifyEmployerHandler(svr server.Server, employerRepo *employer.Repository) http.HandlerFunc {
	return employerVerificationDecisionHandler(svr, employerRepo, employer.VerificationVerified)
}

func RejectEmployerHandler(svr server.Server, employerRepo *employer.Repository) http.HandlerFunc {
	return employerVerificationDecisionHandler(svr, employerRepo, employer.VerificationRejected)
}

func employerVerificationDecisionHandler(svr server.Server, employerRepo *employer.Repository, decision string) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			vars := mux.Vars(r)
			var rq VerificationDecisionRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			if decision == employer.VerificationVerified {
				err = employerRepo.VerifyEmployer(vars["id"], profile.UserID, rq.Remark)
			} else {
				err = employerRepo.RejectEmployer(vars["id"], profile.UserID, rq.Remark)
			}
			if err != nil {
				svr.Log(err, "unable to save employer verification decision")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			emp, err := employerRepo.EmployerByID(vars["id"])
			if err == nil {
				go notifyEmployerVerification(svr, emp)
			}
			svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
}

func notifyEmployerVerification(svr server.Server, emp employer.Employer) {
	emailClient := svr.GetEmail()
	err := emailClient.SendHTMLEmail(
		email.Address{Name: emailClient.DefaultSenderName(), Email: emailClient.NoReplySenderAddress()},
		email.Address{Name: emp.CompanyName, Email: emp.Email},
		email.Address{Email: emailClient.DefaultReplyTo()},
		fmt.Sprintf("Your %s account is %s", svr.GetConfig().SiteName, emp.VerificationStatus),
		fmt.Sprintf("Hi %s,<br />your employer account verification is now <b>%s</b>.<br />%s", emp.CompanyName, emp.VerificationStatus, emp.VerificationRemark),
	)
	if err != nil {
		svr.Log(err, "unable to send employer verification notification")
	}
}
