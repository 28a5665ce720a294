package handler

import (
	"net/http"

	"github.com/jobsphere/job-board/internal/middleware"
	"github.com/jobsphere/job-board/internal/placement"
	"github.com/jobsphere/job-board/internal/server"
)

type placementProfileStore interface {
	ProfileByUserID(userID string) (placement.Profile, error)
	UpdateProfile(p placement.Profile) error
}

type UpdatePlacementProfileRq struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=50"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	CollegeName string `json:"college_name" validate:"omitempty,max=255"`
}

func GetPlacementProfileHandler(svr server.Server, placementRepo placementProfileStore) http.HandlerFunc {
	return middleware.PlacementAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			p, err := placementRepo.ProfileByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "profile not found"})
				return
			}
			svr.JSON(w, http.StatusOK, p)
		})
}

func UpdatePlacementProfileHandler(svr server.Server, placementRepo placementProfileStore) http.HandlerFunc {
	return middleware.PlacementAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			var rq UpdatePlacementProfileRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			p, err := placementRepo.ProfileByUserID(profile.UserID)
			if err != nil {
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "profile not found"})
				return
			}
			if rq.Name != "" {
				p.Name = rq.Name
			}
			if rq.Phone != "" {
				p.Phone = rq.Phone
			}
			if rq.CollegeName != "" {
				p.CollegeName = rq.CollegeName
			}
			if err := placementRepo.UpdateProfile(p); err != nil {
				svr.Log(err, "unable to update placement profile")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, p)
		})
}
