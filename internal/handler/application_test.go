package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobsphere/job-board/internal/application"
	"github.com/jobsphere/job-board/internal/candidate"
	"github.com/jobsphere/job-board/internal/config"
	"github.com/jobsphere/job-board/internal/email"
	"github.com/jobsphere/job-board/internal/middleware"
	"github.com/jobsphere/job-board/internal/server"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApplicationStore struct {
	createFn       func(jobID string, applicant application.ApplicantIdentity, coverLetter string, resume *application.ResumeAttachment) (application.Application, error)
	changeStatusFn func(applicationID string, newStatus application.Status, actor application.Actor, notes string) (application.Application, error)
	recordRoundFn  func(applicationID string, round int, name string, status application.RoundStatus, feedback string) (application.Application, error)
	setSelectedFn  func(applicationID string, flag bool) (application.Application, error)
	setRemarksFn   func(applicationID string, remarks string) (application.Application, error)
	byIDFn         func(id string) (application.Application, error)
	byCandidateFn  func(candidateID string) ([]application.Application, error)
	byJobFn        func(jobID string) ([]application.Application, error)
	byEmployerFn   func(employerID string) ([]application.Application, error)
}

func (f *fakeApplicationStore) CreateApplication(jobID string, applicant application.ApplicantIdentity, coverLetter string, resume *application.ResumeAttachment) (application.Application, error) {
	return f.createFn(jobID, applicant, coverLetter, resume)
}

func (f *fakeApplicationStore) ChangeStatus(applicationID string, newStatus application.Status, actor application.Actor, notes string) (application.Application, error) {
	return f.changeStatusFn(applicationID, newStatus, actor, notes)
}

func (f *fakeApplicationStore) RecordInterviewRound(applicationID string, round int, name string, status application.RoundStatus, feedback string) (application.Application, error) {
	return f.recordRoundFn(applicationID, round, name, status, feedback)
}

func (f *fakeApplicationStore) SetSelectedForProcess(applicationID string, flag bool) (application.Application, error) {
	return f.setSelectedFn(applicationID, flag)
}

func (f *fakeApplicationStore) SetEmployerRemarks(applicationID string, remarks string) (application.Application, error) {
	return f.setRemarksFn(applicationID, remarks)
}

func (f *fakeApplicationStore) ApplicationByID(id string) (application.Application, error) {
	return f.byIDFn(id)
}

func (f *fakeApplicationStore) ApplicationsByCandidate(candidateID string) ([]application.Application, error) {
	return f.byCandidateFn(candidateID)
}

func (f *fakeApplicationStore) ApplicationsByJob(jobID string) ([]application.Application, error) {
	return f.byJobFn(jobID)
}

func (f *fakeApplicationStore) ApplicationsByEmployer(employerID string) ([]application.Application, error) {
	return f.byEmployerFn(employerID)
}

type fakeCandidateGetter struct {
	byUserIDFn func(userID string) (candidate.Candidate, error)
	byIDFn     func(id string) (candidate.Candidate, error)
}

func (f *fakeCandidateGetter) CandidateProfileByUserID(userID string) (candidate.Candidate, error) {
	return f.byUserIDFn(userID)
}

func (f *fakeCandidateGetter) CandidateProfileByID(id string) (candidate.Candidate, error) {
	return f.byIDFn(id)
}

func testServer(t *testing.T) server.Server {
	t.Helper()
	cfg := config.Config{
		Port:          "0",
		Env:           "dev",
		JwtSigningKey: []byte("test-signing-key"),
		SiteName:      "Test Board",
		JobsPerPage:   20,
	}
	return server.NewServer(
		cfg,
		nil,
		mux.NewRouter(),
		email.Client{},
		sessions.NewCookieStore([]byte("test-session-key")),
	)
}

// signOn issues a real session cookie for the given claims so that requests
// pass the authentication middleware.
func signOn(t *testing.T, svr server.Server, claims middleware.UserJWT) []*http.Cookie {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	require.NoError(t, svr.SignOnUser(w, r, claims))
	return w.Result().Cookies()
}

func TestGuestApplyToJobHandler(t *testing.T) {
	svr := testServer(t)

	t.Run("creates a guest application", func(t *testing.T) {
		store := &fakeApplicationStore{
			createFn: func(jobID string, applicant application.ApplicantIdentity, coverLetter string, resume *application.ResumeAttachment) (application.Application, error) {
				assert.Equal(t, "job-1", jobID)
				assert.True(t, applicant.IsGuest())
				require.NotNil(t, applicant.Guest)
				assert.Equal(t, "Jane Doe", applicant.Guest.Name)
				return application.Application{
					ID:                 "app-1",
					JobID:              jobID,
					IsGuestApplication: true,
					ApplicantName:      applicant.Guest.Name,
					Status:             application.StatusPending,
				}, nil
			},
		}
		body, _ := json.Marshal(map[string]string{
			"job_id":          "job-1",
			"applicant_name":  "Jane Doe",
			"applicant_email": "jane@example.com",
			"applicant_phone": "+4412345678",
		})
		req := httptest.NewRequest(http.MethodPost, "/x/apply-guest", bytes.NewReader(body))
		w := httptest.NewRecorder()
		GuestApplyToJobHandler(svr, store)(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var got application.Application
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "app-1", got.ID)
		assert.Equal(t, application.StatusPending, got.Status)
		assert.True(t, got.IsGuestApplication)
	})

	t.Run("rejects missing applicant fields", func(t *testing.T) {
		store := &fakeApplicationStore{
			createFn: func(string, application.ApplicantIdentity, string, *application.ResumeAttachment) (application.Application, error) {
				t.Fatal("store should not be called")
				return application.Application{}, nil
			},
		}
		body, _ := json.Marshal(map[string]string{"job_id": "job-1", "applicant_name": "Jane Doe"})
		req := httptest.NewRequest(http.MethodPost, "/x/apply-guest", bytes.NewReader(body))
		w := httptest.NewRecorder()
		GuestApplyToJobHandler(svr, store)(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps missing job to 404", func(t *testing.T) {
		store := &fakeApplicationStore{
			createFn: func(string, application.ApplicantIdentity, string, *application.ResumeAttachment) (application.Application, error) {
				return application.Application{}, application.ErrNotFound
			},
		}
		body, _ := json.Marshal(map[string]string{
			"job_id":          "missing",
			"applicant_name":  "Jane Doe",
			"applicant_email": "jane@example.com",
			"applicant_phone": "+4412345678",
		})
		req := httptest.NewRequest(http.MethodPost, "/x/apply-guest", bytes.NewReader(body))
		w := httptest.NewRecorder()
		GuestApplyToJobHandler(svr, store)(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("maps duplicate application to 409", func(t *testing.T) {
		store := &fakeApplicationStore{
			createFn: func(string, application.ApplicantIdentity, string, *application.ResumeAttachment) (application.Application, error) {
				return application.Application{}, application.ErrDuplicateApplication
			},
		}
		body, _ := json.Marshal(map[string]string{
			"job_id":          "job-1",
			"applicant_name":  "Jane Doe",
			"applicant_email": "jane@example.com",
			"applicant_phone": "+4412345678",
		})
		req := httptest.NewRequest(http.MethodPost, "/x/apply-guest", bytes.NewReader(body))
		w := httptest.NewRecorder()
		GuestApplyToJobHandler(svr, store)(w, req)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("maps unexpected errors to 500", func(t *testing.T) {
		store := &fakeApplicationStore{
			createFn: func(string, application.ApplicantIdentity, string, *application.ResumeAttachment) (application.Application, error) {
				return application.Application{}, errors.New("connection refused")
			},
		}
		body, _ := json.Marshal(map[string]string{
			"job_id":          "job-1",
			"applicant_name":  "Jane Doe",
			"applicant_email": "jane@example.com",
			"applicant_phone": "+4412345678",
		})
		req := httptest.NewRequest(http.MethodPost, "/x/apply-guest", bytes.NewReader(body))
		w := httptest.NewRecorder()
		GuestApplyToJobHandler(svr, store)(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("throttles repeated applies from the same ip", func(t *testing.T) {
		store := &fakeApplicationStore{
			createFn: func(jobID string, applicant application.ApplicantIdentity, coverLetter string, resume *application.ResumeAttachment) (application.Application, error) {
				return application.Application{ID: "app-1", JobID: jobID, IsGuestApplication: true, Status: application.StatusPending}, nil
			},
		}
		handler := GuestApplyToJobHandler(svr, store)
		body, _ := json.Marshal(map[string]string{
			"job_id":          "job-1",
			"applicant_name":  "Jane Doe",
			"applicant_email": "jane@example.com",
			"applicant_phone": "+4412345678",
		})

		req := httptest.NewRequest(http.MethodPost, "/x/apply-guest", bytes.NewReader(body))
		req.Header.Set("x-forwarded-for", "203.0.113.7")
		w := httptest.NewRecorder()
		handler(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		req = httptest.NewRequest(http.MethodPost, "/x/apply-guest", bytes.NewReader(body))
		req.Header.Set("x-forwarded-for", "203.0.113.7")
		w = httptest.NewRecorder()
		handler(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}

func TestChangeApplicationStatusHandler(t *testing.T) {
	svr := testServer(t)
	candidates := &fakeCandidateGetter{
		byIDFn: func(string) (candidate.Candidate, error) {
			return candidate.Candidate{}, errors.New("not found")
		},
	}

	newRequest := func(t *testing.T, status string, cookies []*http.Cookie) *http.Request {
		t.Helper()
		body, _ := json.Marshal(map[string]string{"status": status, "notes": "moving on"})
		req := httptest.NewRequest(http.MethodPut, "/x/applications/app-1/status", bytes.NewReader(body))
		for _, c := range cookies {
			req.AddCookie(c)
		}
		return req
	}

	t.Run("employer moves application to shortlisted", func(t *testing.T) {
		cookies := signOn(t, svr, middleware.UserJWT{UserID: "emp-user-1", Email: "emp@example.com", IsEmployer: true})
		store := &fakeApplicationStore{
			changeStatusFn: func(applicationID string, newStatus application.Status, actor application.Actor, notes string) (application.Application, error) {
				assert.Equal(t, "app-1", applicationID)
				assert.Equal(t, application.StatusShortlisted, newStatus)
				assert.Equal(t, application.ActorModelEmployer, actor.Model)
				assert.Equal(t, "emp-user-1", actor.ID)
				assert.Equal(t, "moving on", notes)
				return application.Application{ID: applicationID, Status: newStatus, IsGuestApplication: true}, nil
			},
		}
		router := mux.NewRouter()
		router.HandleFunc("/x/applications/{id}/status", ChangeApplicationStatusHandler(svr, store, candidates)).Methods(http.MethodPut)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(t, "shortlisted", cookies))

		require.Equal(t, http.StatusOK, w.Code)
		var got application.Application
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, application.StatusShortlisted, got.Status)
	})

	t.Run("admin actor is tagged as Admin", func(t *testing.T) {
		cookies := signOn(t, svr, middleware.UserJWT{UserID: "admin-1", Email: "admin@example.com", IsAdmin: true})
		store := &fakeApplicationStore{
			changeStatusFn: func(applicationID string, newStatus application.Status, actor application.Actor, notes string) (application.Application, error) {
				assert.Equal(t, application.ActorModelAdmin, actor.Model)
				return application.Application{ID: applicationID, Status: newStatus, IsGuestApplication: true}, nil
			},
		}
		router := mux.NewRouter()
		router.HandleFunc("/x/applications/{id}/status", ChangeApplicationStatusHandler(svr, store, candidates)).Methods(http.MethodPut)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(t, "rejected", cookies))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		cookies := signOn(t, svr, middleware.UserJWT{UserID: "emp-user-1", Email: "emp@example.com", IsEmployer: true})
		store := &fakeApplicationStore{
			changeStatusFn: func(string, application.Status, application.Actor, string) (application.Application, error) {
				t.Fatal("store should not be called")
				return application.Application{}, nil
			},
		}
		router := mux.NewRouter()
		router.HandleFunc("/x/applications/{id}/status", ChangeApplicationStatusHandler(svr, store, candidates)).Methods(http.MethodPut)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(t, "on-hold", cookies))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects anonymous requests", func(t *testing.T) {
		store := &fakeApplicationStore{
			changeStatusFn: func(string, application.Status, application.Actor, string) (application.Application, error) {
				t.Fatal("store should not be called")
				return application.Application{}, nil
			},
		}
		router := mux.NewRouter()
		router.HandleFunc("/x/applications/{id}/status", ChangeApplicationStatusHandler(svr, store, candidates)).Methods(http.MethodPut)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(t, "shortlisted", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a signed-on candidate", func(t *testing.T) {
		cookies := signOn(t, svr, middleware.UserJWT{UserID: "cand-1", Email: "cand@example.com", IsCandidate: true})
		store := &fakeApplicationStore{
			changeStatusFn: func(string, application.Status, application.Actor, string) (application.Application, error) {
				t.Fatal("store should not be called")
				return application.Application{}, nil
			},
		}
		router := mux.NewRouter()
		router.HandleFunc("/x/applications/{id}/status", ChangeApplicationStatusHandler(svr, store, candidates)).Methods(http.MethodPut)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(t, "shortlisted", cookies))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRecordInterviewRoundHandler(t *testing.T) {
	svr := testServer(t)
	cookies := signOn(t, svr, middleware.UserJWT{UserID: "emp-user-1", Email: "emp@example.com", IsEmployer: true})

	newRequest := func(t *testing.T, body interface{}) *http.Request {
		t.Helper()
		buf, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPut, "/x/applications/app-1/rounds", bytes.NewReader(buf))
		for _, c := range cookies {
			req.AddCookie(c)
		}
		return req
	}

	t.Run("upserts a round by number", func(t *testing.T) {
		store := &fakeApplicationStore{
			recordRoundFn: func(applicationID string, round int, name string, status application.RoundStatus, feedback string) (application.Application, error) {
				assert.Equal(t, "app-1", applicationID)
				assert.Equal(t, 2, round)
				assert.Equal(t, "Technical", name)
				assert.Equal(t, application.RoundPassed, status)
				return application.Application{
					ID:              applicationID,
					Status:          application.StatusInterviewed,
					InterviewRounds: []application.InterviewRound{{Round: 2, Name: name, Status: status, Feedback: feedback}},
				}, nil
			},
		}
		router := mux.NewRouter()
		router.HandleFunc("/x/applications/{id}/rounds", RecordInterviewRoundHandler(svr, store)).Methods(http.MethodPut)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(t, map[string]interface{}{
			"round": 2, "name": "Technical", "status": "passed", "feedback": "strong",
		}))

		require.Equal(t, http.StatusOK, w.Code)
		var got application.Application
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got.InterviewRounds, 1)
		assert.Equal(t, 2, got.InterviewRounds[0].Round)
		assert.Equal(t, application.RoundPassed, got.InterviewRounds[0].Status)
	})

	t.Run("rejects an unknown round status", func(t *testing.T) {
		store := &fakeApplicationStore{
			recordRoundFn: func(string, int, string, application.RoundStatus, string) (application.Application, error) {
				t.Fatal("store should not be called")
				return application.Application{}, nil
			},
		}
		router := mux.NewRouter()
		router.HandleFunc("/x/applications/{id}/rounds", RecordInterviewRoundHandler(svr, store)).Methods(http.MethodPut)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(t, map[string]interface{}{
			"round": 1, "name": "Screen", "status": "maybe",
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects round zero", func(t *testing.T) {
		store := &fakeApplicationStore{
			recordRoundFn: func(string, int, string, application.RoundStatus, string) (application.Application, error) {
				t.Fatal("store should not be called")
				return application.Application{}, nil
			},
		}
		router := mux.NewRouter()
		router.HandleFunc("/x/applications/{id}/rounds", RecordInterviewRoundHandler(svr, store)).Methods(http.MethodPut)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newRequest(t, map[string]interface{}{
			"round": 0, "name": "Screen", "status": "pending",
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMyApplicationsHandler(t *testing.T) {
	svr := testServer(t)
	cookies := signOn(t, svr, middleware.UserJWT{UserID: "user-1", Email: "cand@example.com", IsCandidate: true})

	candidates := &fakeCandidateGetter{
		byUserIDFn: func(userID string) (candidate.Candidate, error) {
			assert.Equal(t, "user-1", userID)
			return candidate.Candidate{ID: "cand-1"}, nil
		},
	}
	store := &fakeApplicationStore{
		byCandidateFn: func(candidateID string) ([]application.Application, error) {
			assert.Equal(t, "cand-1", candidateID)
			return []application.Application{
				{ID: "app-2", CandidateID: candidateID, Status: application.StatusShortlisted},
				{ID: "app-1", CandidateID: candidateID, Status: application.StatusPending},
			}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/x/applications/mine", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	MyApplicationsHandler(svr, store, candidates)(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got []application.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "app-2", got[0].ID)
}

func TestSelectForProcessHandler(t *testing.T) {
	svr := testServer(t)
	cookies := signOn(t, svr, middleware.UserJWT{UserID: "emp-user-1", Email: "emp@example.com", IsEmployer: true})

	store := &fakeApplicationStore{
		setSelectedFn: func(applicationID string, flag bool) (application.Application, error) {
			assert.Equal(t, "app-1", applicationID)
			assert.True(t, flag)
			return application.Application{ID: applicationID, IsSelectedForProcess: flag}, nil
		},
	}
	body, _ := json.Marshal(map[string]bool{"selected": true})
	req := httptest.NewRequest(http.MethodPut, "/x/applications/app-1/select", bytes.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router := mux.NewRouter()
	router.HandleFunc("/x/applications/{id}/select", SelectForProcessHandler(svr, store)).Methods(http.MethodPut)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got application.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.IsSelectedForProcess)
}
