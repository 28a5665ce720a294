package candidate

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"github.com/segmentio/ksuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// SaveProfile creates a new candidate profile with a unique slug derived from
// the candidate name.
func (r *Repository) SaveProfile(c Candidate) (Candidate, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return Candidate{}, err
	}
	c.ID = id.String()
	c.Slug = slug.Make(fmt.Sprintf("%s %d", c.Name, time.Now().UTC().Unix()))
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	educationJSON, err := json.Marshal(c.Education)
	if err != nil {
		return Candidate{}, err
	}
	_, err = r.db.Exec(`INSERT INTO candidate_profile
		(id, user_id, name, email, phone, location, resume_headline, profile_summary, skills, education, image_id, resume_id, marksheet_id, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		c.ID, c.UserID, c.Name, c.Email, c.Phone, c.Location, c.ResumeHeadline, c.ProfileSummary,
		pq.Array(c.Skills), educationJSON, nullable(c.ImageID), nullable(c.ResumeID), nullable(c.MarksheetID), c.Slug, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return Candidate{}, err
	}
	return c, nil
}

func (r *Repository) UpdateProfile(c Candidate) error {
	educationJSON, err := json.Marshal(c.Education)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`UPDATE candidate_profile
		SET name = $1, phone = $2, location = $3, resume_headline = $4, profile_summary = $5, skills = $6, education = $7, image_id = $8, resume_id = $9, marksheet_id = $10, updated_at = $11
		WHERE id = $12`,
		c.Name, c.Phone, c.Location, c.ResumeHeadline, c.ProfileSummary, pq.Array(c.Skills), educationJSON,
		nullable(c.ImageID), nullable(c.ResumeID), nullable(c.MarksheetID), time.Now().UTC(), c.ID)
	return err
}

func (r *Repository) UpdateResume(candidateID, resumeID string) error {
	_, err := r.db.Exec(`UPDATE candidate_profile SET resume_id = $1, updated_at = $2 WHERE id = $3`, resumeID, time.Now().UTC(), candidateID)
	return err
}

func (r *Repository) UpdateMarksheet(candidateID, marksheetID string) error {
	_, err := r.db.Exec(`UPDATE candidate_profile SET marksheet_id = $1, updated_at = $2 WHERE id = $3`, marksheetID, time.Now().UTC(), candidateID)
	return err
}

func (r *Repository) CandidateProfileByID(id string) (Candidate, error) {
	return r.profileBy(`id = $1`, id)
}

func (r *Repository) CandidateProfileByUserID(userID string) (Candidate, error) {
	return r.profileBy(`user_id = $1`, userID)
}

func (r *Repository) CandidateProfileBySlug(slug string) (Candidate, error) {
	return r.profileBy(`slug = $1`, slug)
}

func (r *Repository) profileBy(where string, arg interface{}) (Candidate, error) {
	c := Candidate{}
	row := r.db.QueryRow(`SELECT id, user_id, name, email, phone, location, resume_headline, profile_summary, skills, education, image_id, resume_id, marksheet_id, slug, created_at, updated_at
		FROM candidate_profile WHERE `+where, arg)
	var imageID, resumeID, marksheetID sql.NullString
	var educationJSON []byte
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Location, &c.ResumeHeadline, &c.ProfileSummary,
		pq.Array(&c.Skills), &educationJSON, &imageID, &resumeID, &marksheetID, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(educationJSON, &c.Education); err != nil {
		return c, err
	}
	c.ImageID = imageID.String
	c.ResumeID = resumeID.String
	c.MarksheetID = marksheetID.String
	c.CreatedAtHumanised = humanize.Time(c.CreatedAt)
	c.UpdatedAtHumanised = humanize.Time(c.UpdatedAt)
	return c, nil
}

func (r *Repository) DeleteProfile(id string) error {
	_, err := r.db.Exec(`DELETE FROM candidate_profile WHERE id = $1`, id)
	return err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
