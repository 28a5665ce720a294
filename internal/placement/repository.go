package placement

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

func (r *Repository) SaveProfile(p Profile) (Profile, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return Profile{}, err
	}
	p.ID = id.String()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	_, err = r.db.Exec(`INSERT INTO placement_profile
		(id, user_id, name, email, phone, college_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.UserID, p.Name, p.Email, p.Phone, p.CollegeName, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (r *Repository) UpdateProfile(p Profile) error {
	_, err := r.db.Exec(`UPDATE placement_profile
		SET name = $1, phone = $2, college_name = $3, updated_at = $4
		WHERE id = $5`,
		p.Name, p.Phone, p.CollegeName, time.Now().UTC(), p.ID)
	return err
}

func (r *Repository) ProfileByUserID(userID string) (Profile, error) {
	p := Profile{}
	row := r.db.QueryRow(`SELECT id, user_id, name, email, phone, college_name, created_at, updated_at
		FROM placement_profile WHERE user_id = $1`, userID)
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.CollegeName, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	p.CreatedAtHumanised = humanize.Time(p.CreatedAt)
	return p, nil
}
