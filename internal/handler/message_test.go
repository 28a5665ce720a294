package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobsphere/job-board/internal/message"
	"github.com/jobsphere/job-board/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageStore struct {
	sendFn          func(fromUserID, toUserID, jobID, content string) (message.Message, error)
	byIDFn          func(id string) (message.Message, error)
	markDeliveredFn func(id string) error
	sentFromFn      func(userID string) ([]*message.Message, error)
	sentToFn        func(userID string) ([]*message.Message, error)
}

func (f *fakeMessageStore) SendMessage(fromUserID, toUserID, jobID, content string) (message.Message, error) {
	return f.sendFn(fromUserID, toUserID, jobID, content)
}

func (f *fakeMessageStore) MessageByID(id string) (message.Message, error) {
	return f.byIDFn(id)
}

func (f *fakeMessageStore) MarkMessageAsDelivered(id string) error {
	return f.markDeliveredFn(id)
}

func (f *fakeMessageStore) MessagesSentFrom(userID string) ([]*message.Message, error) {
	return f.sentFromFn(userID)
}

func (f *fakeMessageStore) MessagesSentTo(userID string) ([]*message.Message, error) {
	return f.sentToFn(userID)
}

func TestMarkMessageDeliveredHandler(t *testing.T) {
	svr := testServer(t)

	newRequest := func(cookies []*http.Cookie) *http.Request {
		req := httptest.NewRequest(http.MethodPut, "/x/messages/msg-1/delivered", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		return req
	}
	serve := func(store *fakeMessageStore, req *http.Request) *httptest.ResponseRecorder {
		router := mux.NewRouter()
		router.HandleFunc("/x/messages/{id}/delivered", MarkMessageDeliveredHandler(svr, store)).Methods(http.MethodPut)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("recipient marks the message delivered", func(t *testing.T) {
		cookies := signOn(t, svr, middleware.UserJWT{UserID: "user-2", Email: "to@example.com", IsCandidate: true})
		delivered := false
		store := &fakeMessageStore{
			byIDFn: func(id string) (message.Message, error) {
				assert.Equal(t, "msg-1", id)
				return message.Message{ID: id, FromUserID: "user-1", ToUserID: "user-2"}, nil
			},
			markDeliveredFn: func(id string) error {
				delivered = true
				return nil
			},
		}
		w := serve(store, newRequest(cookies))
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, delivered)
	})

	t.Run("rejects a user who is not the recipient", func(t *testing.T) {
		cookies := signOn(t, svr, middleware.UserJWT{UserID: "user-3", Email: "other@example.com", IsCandidate: true})
		store := &fakeMessageStore{
			byIDFn: func(id string) (message.Message, error) {
				return message.Message{ID: id, FromUserID: "user-1", ToUserID: "user-2"}, nil
			},
			markDeliveredFn: func(id string) error {
				t.Fatal("store should not be called")
				return nil
			},
		}
		w := serve(store, newRequest(cookies))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("sender cannot acknowledge their own message", func(t *testing.T) {
		cookies := signOn(t, svr, middleware.UserJWT{UserID: "user-1", Email: "from@example.com", IsEmployer: true})
		store := &fakeMessageStore{
			byIDFn: func(id string) (message.Message, error) {
				return message.Message{ID: id, FromUserID: "user-1", ToUserID: "user-2"}, nil
			},
			markDeliveredFn: func(id string) error {
				t.Fatal("store should not be called")
				return nil
			},
		}
		w := serve(store, newRequest(cookies))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("maps a missing message to 404", func(t *testing.T) {
		cookies := signOn(t, svr, middleware.UserJWT{UserID: "user-2", Email: "to@example.com", IsCandidate: true})
		store := &fakeMessageStore{
			byIDFn: func(id string) (message.Message, error) {
				return message.Message{}, sql.ErrNoRows
			},
		}
		w := serve(store, newRequest(cookies))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects anonymous requests", func(t *testing.T) {
		store := &fakeMessageStore{
			byIDFn: func(id string) (message.Message, error) {
				t.Fatal("store should not be called")
				return message.Message{}, nil
			},
		}
		w := serve(store, newRequest(nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
