package candidate

import "time"

type Candidate struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	Location       string      `json:"location"`
	ResumeHeadline string      `json:"resume_headline"`
	ProfileSummary string      `json:"profile_summary"`
	Skills         []string    `json:"skills"`
	Education      []Education `json:"education"`
	ImageID        string      `json:"image_id,omitempty"`
	ResumeID       string      `json:"resume_id,omitempty"`
	MarksheetID    string      `json:"marksheet_id,omitempty"`
	Slug           string      `json:"slug"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	CreatedAtHumanised string `json:"created_at_humanised,omitempty"`
	UpdatedAtHumanised string `json:"updated_at_humanised,omitempty"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	YearFrom    int    `json:"year_from"`
	YearTo      int    `json:"year_to"`
}
