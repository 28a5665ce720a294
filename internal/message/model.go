package message

import "time"

type Message struct {
	ID          string     `json:"id"`
	FromUserID  string     `json:"from_user_id"`
	ToUserID    string     `json:"to_user_id"`
	JobID       string     `json:"job_id,omitempty"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	CreatedAtHumanised string `json:"created_at_humanised"`
}
