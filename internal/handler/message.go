package handler

import (
	"database/sql"
	"net/http"

	"github.com/jobsphere/job-board/internal/message"
	"github.com/jobsphere/job-board/internal/middleware"
	"github.com/jobsphere/job-board/internal/server"

	"github.com/gorilla/mux"
)

// messageStore is the subset of message.Repository the handlers depend on.
type messageStore interface {
	SendMessage(fromUserID, toUserID, jobID, content string) (message.Message, error)
	MessageByID(id string) (message.Message, error)
	MarkMessageAsDelivered(id string) error
	MessagesSentFrom(userID string) ([]*message.Message, error)
	MessagesSentTo(userID string) ([]*message.Message, error)
}

type SendMessageRq struct {
	ToUserID string `json:"to_user_id" validate:"required"`
	JobID    string `json:"job_id"`
	Content  string `json:"content" validate:"required,max=5000"`
}

func SendMessageHandler(svr server.Server, messageRepo messageStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			var rq SendMessageRq
			if err := decodeAndValidate(r, &rq); err != nil {
				svr.JSON(w, http.StatusBadRequest, validationErrorResponse(err))
				return
			}
			m, err := messageRepo.SendMessage(profile.UserID, rq.ToUserID, rq.JobID, rq.Content)
			if err != nil {
				svr.Log(err, "unable to send message")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusCreated, m)
		})
}

func SentMessagesHandler(svr server.Server, messageRepo messageStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			messages, err := messageRepo.MessagesSentFrom(profile.UserID)
			if err != nil {
				svr.Log(err, "MessagesSentFrom")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, messages)
		})
}

func InboxMessagesHandler(svr server.Server, messageRepo messageStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			messages, err := messageRepo.MessagesSentTo(profile.UserID)
			if err != nil {
				svr.Log(err, "MessagesSentTo")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, messages)
		})
}

// MarkMessageDeliveredHandler records the delivery receipt. Only the recipient
// may acknowledge a message.
func MarkMessageDeliveredHandler(svr server.Server, messageRepo messageStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.SessionStore,
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			profile, err := middleware.GetUserFromJWT(r, svr.SessionStore, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, nil)
				return
			}
			vars := mux.Vars(r)
			m, err := messageRepo.MessageByID(vars["id"])
			if err == sql.ErrNoRows {
				svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error", "message": "message not found"})
				return
			}
			if err != nil {
				svr.Log(err, "unable to load message")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			if m.ToUserID != profile.UserID {
				svr.JSON(w, http.StatusForbidden, map[string]string{"status": "error", "message": "only the recipient can mark a message delivered"})
				return
			}
			if err := messageRepo.MarkMessageAsDelivered(m.ID); err != nil {
				svr.Log(err, "unable to mark message as delivered")
				svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
				return
			}
			svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
}
