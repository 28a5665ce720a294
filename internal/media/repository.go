package media

import (
	"database/sql"

	"github.com/segmentio/ksuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) SaveMedia(m Media) (string, error) {
	mediaID, err := ksuid.NewRandom()
	if err != nil {
		return "", err
	}
	_, err = r.db.Exec(`INSERT INTO media (id, bytes, media_type, file_name, file_size) VALUES ($1, $2, $3, $4, $5)`,
		mediaID.String(), m.Bytes, m.MediaType, m.FileName, len(m.Bytes))
	if err != nil {
		return "", err
	}
	return mediaID.String(), nil
}

func (r *Repository) MediaByID(mediaID string) (Media, error) {
	m := Media{}
	row := r.db.QueryRow(`SELECT id, bytes, media_type, file_name, file_size, created_at FROM media WHERE id = $1`, mediaID)
	if err := row.Scan(&m.ID, &m.Bytes, &m.MediaType, &m.FileName, &m.FileSize, &m.CreatedAt); err != nil {
		return m, err
	}
	return m, nil
}

func (r *Repository) DeleteMediaByID(mediaID string) error {
	_, err := r.db.Exec(`DELETE FROM media WHERE id = $1`, mediaID)
	return err
}
