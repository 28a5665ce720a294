package user

import "time"

const (
	UserTypeCandidate = "candidate"
	UserTypeEmployer  = "employer"
	UserTypePlacement = "placement"
	UserTypeAdmin     = "admin"
)

type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Type               string    `json:"user_type"`
	CreatedAt          time.Time `json:"created_at"`
	CreatedAtHumanised string    `json:"created_at_humanised,omitempty"`
	IsAdmin            bool      `json:"is_admin"`
}
