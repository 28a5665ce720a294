package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobsphere/job-board/internal/middleware"
	"github.com/jobsphere/job-board/internal/placement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlacementStore struct {
	byUserIDFn func(userID string) (placement.Profile, error)
	updateFn   func(p placement.Profile) error
}

func (f *fakePlacementStore) ProfileByUserID(userID string) (placement.Profile, error) {
	return f.byUserIDFn(userID)
}

func (f *fakePlacementStore) UpdateProfile(p placement.Profile) error {
	return f.updateFn(p)
}

func TestPlacementProfileHandlers(t *testing.T) {
	svr := testServer(t)

	t.Run("placement officer reads own profile", func(t *testing.T) {
		cookies := signOn(t, svr, middleware.UserJWT{UserID: "pl-user-1", Email: "tpo@college.edu", IsPlacement: true})
		store := &fakePlacementStore{
			byUserIDFn: func(userID string) (placement.Profile, error) {
				assert.Equal(t, "pl-user-1", userID)
				return placement.Profile{ID: "pl-1", UserID: userID, Name: "TPO", CollegeName: "Springfield Tech"}, nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/x/placement/profile", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		GetPlacementProfileHandler(svr, store)(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var got placement.Profile
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Springfield Tech", got.CollegeName)
	})

	t.Run("updates college name", func(t *testing.T) {
		cookies := signOn(t, svr, middleware.UserJWT{UserID: "pl-user-1", Email: "tpo@college.edu", IsPlacement: true})
		store := &fakePlacementStore{
			byUserIDFn: func(userID string) (placement.Profile, error) {
				return placement.Profile{ID: "pl-1", UserID: userID, Name: "TPO", CollegeName: "Springfield Tech"}, nil
			},
			updateFn: func(p placement.Profile) error {
				assert.Equal(t, "Shelbyville Institute", p.CollegeName)
				return nil
			},
		}
		body, _ := json.Marshal(map[string]string{"college_name": "Shelbyville Institute"})
		req := httptest.NewRequest(http.MethodPut, "/x/placement/profile", bytes.NewReader(body))
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		UpdatePlacementProfileHandler(svr, store)(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("registration requires a college name", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"name":      "TPO",
			"email":     "tpo@college.edu",
			"password":  "s3cret-pw",
			"user_type": "placement",
		})
		req := httptest.NewRequest(http.MethodPost, "/x/auth/register", bytes.NewReader(body))
		w := httptest.NewRecorder()
		RegisterHandler(svr, nil, nil, nil, nil)(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		fields, ok := got["fields"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, fields, "College")
	})

	t.Run("rejects other roles", func(t *testing.T) {
		store := &fakePlacementStore{
			byUserIDFn: func(string) (placement.Profile, error) {
				t.Fatal("store should not be called")
				return placement.Profile{}, nil
			},
		}
		for name, claims := range map[string]middleware.UserJWT{
			"candidate": {UserID: "c-1", Email: "c@example.com", IsCandidate: true},
			"employer":  {UserID: "e-1", Email: "e@example.com", IsEmployer: true},
			"admin":     {UserID: "a-1", Email: "a@example.com", IsAdmin: true},
		} {
			t.Run(name, func(t *testing.T) {
				cookies := signOn(t, svr, claims)
				req := httptest.NewRequest(http.MethodGet, "/x/placement/profile", nil)
				for _, c := range cookies {
					req.AddCookie(c)
				}
				w := httptest.NewRecorder()
				GetPlacementProfileHandler(svr, store)(w, req)
				assert.Equal(t, http.StatusUnauthorized, w.Code)
			})
		}
	})
}
