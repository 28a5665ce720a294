package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jobsphere/job-board/internal/candidate"
	"github.com/jobsphere/job-board/internal/email"
	"github.com/jobsphere/job-board/internal/employer"
	"github.com/jobsphere/job-board/internal/middleware"
	"github.com/jobsphere/job-board/internal/placement"
	"github.com/jobsphere/job-board/internal/server"
	"github.com/jobsphere/job-board/internal/user"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRq struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	UserType string `json:"user_type" validate:"required,oneof=candidate employer placement"`
	Company  string `json:"company_name" validate:"required_if=UserType employer,omitempty,max=255"`
	College  string `json:"college_name" validate:"required_if=UserType placement,omitempty,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

type LoginRq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body")
	}
	return validate.Struct(dst)
}

func validationErrorResponse(err error) map[string]interface{} {
	fields := map[string]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return map[string]interface{}{"status": "error", "message": err.Error(), "fields": fields}
}

// RegisterHandler creates the auth user plus the role profile in one go, then
// signs the user on.
func RegisterHandler(svr server.Server, userRepo *user.Repository, candidateRepo *candidate.Repository, employerRepo *employer.Repository, placementRepo *placement.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rq RegisterRq
		if err := decodeAndValidate(r, &rq); err != nil {
			svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
			return
		}
		u, err := userRepo.CreateUser(rq.Email, rq.Password, rq.UserType)
		if err == user.ErrEmailTaken {
			svr.JSON(w, http.StatusConflict, map[string]string{"status": "error", "message": err.Error()})
			return
		}
		if err != nil {
			svr.Log(err, "unable to create user")
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		switch rq.UserType {
		case user.UserTypeCandidate:
			_, err = candidateRepo.SaveProfile(candidate.Candidate{
				UserID: u.ID,
				Name:   rq.Name,
				Email:  rq.Email,
				Phone:  rq.Phone,
			})
		case user.UserTypeEmployer:
			_, err = employerRepo.SaveEmployer(employer.Employer{
				UserID:      u.ID,
				CompanyName: rq.Company,
				Email:       rq.Email,
			})
		case user.UserTypePlacement:
			_, err = placementRepo.SaveProfile(placement.Profile{
				UserID:      u.ID,
				Name:        rq.Name,
				Email:       rq.Email,
				Phone:       rq.Phone,
				CollegeName: rq.College,
			})
		}
		if err != nil {
			svr.Log(err, "unable to create profile for new user")
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		if err := signOnUser(svr, w, r, u); err != nil {
			svr.Log(err, "unable to sign on new user")
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		svr.JSON(w, http.StatusCreated, map[string]string{"status": "ok", "user_id": u.ID})
	}
}

func LoginHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rq LoginRq
		if err := decodeAndValidate(r, &rq); err != nil {
			svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
			return
		}
		u, err := userRepo.AuthenticateUser(rq.Email, rq.Password)
		if err == user.ErrInvalidCredentials {
			svr.JSON(w, http.StatusUnauthorized, map[string]string{"status": "error", "message": err.Error()})
			return
		}
		if err != nil {
			svr.Log(err, "unable to authenticate user")
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		if err := signOnUser(svr, w, r, u); err != nil {
			svr.Log(err, "unable to sign on user")
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		svr.JSON(w, http.StatusOK, map[string]string{"status": "ok", "user_id": u.ID, "user_type": u.Type})
	}
}

func signOnUser(svr server.Server, w http.ResponseWriter, r *http.Request, u user.User) error {
	return svr.SignOnUser(w, r, middleware.UserJWT{
		UserID:      u.ID,
		Email:       u.Email,
		IsAdmin:     u.Type == user.UserTypeAdmin,
		IsEmployer:  u.Type == user.UserTypeEmployer,
		IsCandidate: u.Type == user.UserTypeCandidate,
		IsPlacement: u.Type == user.UserTypePlacement,
	})
}

func LogoutHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svr.SignOffUser(w, r); err != nil {
			svr.Log(err, "unable to sign off user")
		}
		svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type PasswordResetRq struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRq struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func RequestPasswordResetHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rq PasswordResetRq
		if err := decodeAndValidate(r, &rq); err != nil {
			svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
			return
		}
		// do not leak which emails exist, always answer ok
		if _, err := userRepo.GetUser(rq.Email); err != nil {
			svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		token, err := userRepo.SavePasswordResetToken(rq.Email)
		if err != nil {
			svr.Log(err, "unable to save password reset token")
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		emailClient := svr.GetEmail()
		err = emailClient.SendHTMLEmail(
			email.Address{Name: emailClient.DefaultSenderName(), Email: emailClient.NoReplySenderAddress()},
			email.Address{Email: rq.Email},
			email.Address{Email: emailClient.DefaultReplyTo()},
			fmt.Sprintf("Reset your %s password", svr.GetConfig().SiteName),
			fmt.Sprintf("Use the following link to reset your password: %s%s/reset-password/%s", svr.GetConfig().URLProtocol, svr.GetConfig().SiteHost, token),
		)
		if err != nil {
			svr.Log(err, "unable to send password reset email")
		}
		svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func ConfirmPasswordResetHandler(svr server.Server, userRepo *user.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rq PasswordResetConfirmRq
		if err := decodeAndValidate(r, &rq); err != nil {
			svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
			return
		}
		maxAge := time.Duration(svr.GetConfig().PasswordResetHours) * time.Hour
		if err := userRepo.ConfirmPasswordReset(rq.Token, rq.NewPassword, maxAge); err != nil {
			if err == user.ErrTokenExpired {
				svr.JSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": err.Error()})
				return
			}
			svr.Log(err, "unable to confirm password reset")
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func HealthHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svr.Conn.Ping(); err != nil {
			svr.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
