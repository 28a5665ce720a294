package savedjobs

import (
	"database/sql"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) SaveJob(candidateID, jobID string) error {
	_, err := r.db.Exec(
		`INSERT INTO saved_job (candidate_id, job_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		candidateID,
		jobID,
		time.Now().UTC(),
	)
	return err
}

func (r *Repository) UnsaveJob(candidateID, jobID string) error {
	_, err := r.db.Exec(`DELETE FROM saved_job WHERE candidate_id = $1 AND job_id = $2`, candidateID, jobID)
	return err
}

func (r *Repository) SavedJobIDs(candidateID string) ([]string, error) {
	ids := []string{}
	rows, err := r.db.Query(`SELECT job_id FROM saved_job WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return ids, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
