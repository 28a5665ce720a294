package placement

import "time"

// Profile is a placement officer: a college contact who registers candidates
// from their institution.
type Profile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CollegeName string    `json:"college_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CreatedAtHumanised string `json:"created_at_humanised,omitempty"`
}
