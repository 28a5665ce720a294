package message

import (
	"database/sql"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/segmentio/ksuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) SendMessage(fromUserID, toUserID, jobID, content string) (Message, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return Message{}, err
	}
	m := Message{
		ID:         id.String(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		JobID:      jobID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = r.db.Exec(`INSERT INTO message (id, from_user_id, to_user_id, job_id, content, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.FromUserID, m.ToUserID, nullable(m.JobID), m.Content, m.CreatedAt)
	if err != nil {
		return Message{}, err
	}
	m.CreatedAtHumanised = humanize.Time(m.CreatedAt)
	return m, nil
}

func (r *Repository) MessageByID(id string) (Message, error) {
	m := Message{}
	var jobID sql.NullString
	var deliveredAt sql.NullTime
	row := r.db.QueryRow(`SELECT id, from_user_id, to_user_id, job_id, content, created_at, delivered_at FROM message WHERE id = $1`, id)
	if err := row.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &jobID, &m.Content, &m.CreatedAt, &deliveredAt); err != nil {
		return m, err
	}
	m.JobID = jobID.String
	if deliveredAt.Valid {
		t := deliveredAt.Time
		m.DeliveredAt = &t
	}
	m.CreatedAtHumanised = humanize.Time(m.CreatedAt)
	return m, nil
}

func (r *Repository) MarkMessageAsDelivered(id string) error {
	_, err := r.db.Exec(`UPDATE message SET delivered_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *Repository) MessagesSentFrom(userID string) ([]*Message, error) {
	return r.messagesWhere(`from_user_id = $1`, userID)
}

func (r *Repository) MessagesSentTo(userID string) ([]*Message, error) {
	return r.messagesWhere(`to_user_id = $1`, userID)
}

func (r *Repository) messagesWhere(where string, arg interface{}) ([]*Message, error) {
	messages := []*Message{}
	rows, err := r.db.Query(`SELECT id, from_user_id, to_user_id, job_id, content, created_at, delivered_at FROM message WHERE `+where+` ORDER BY created_at DESC`, arg)
	if err != nil {
		return messages, err
	}
	defer rows.Close()
	for rows.Next() {
		m := &Message{}
		var jobID sql.NullString
		var deliveredAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &jobID, &m.Content, &m.CreatedAt, &deliveredAt); err != nil {
			return messages, err
		}
		m.JobID = jobID.String
		if deliveredAt.Valid {
			t := deliveredAt.Time
			m.DeliveredAt = &t
		}
		m.CreatedAtHumanised = humanize.Time(m.CreatedAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
