package employer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"github.com/segmentio/ksuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) SaveEmployer(e Employer) (Employer, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return Employer{}, err
	}
	e.ID = id.String()
	e.Slug = slug.Make(fmt.Sprintf("%s %d", e.CompanyName, time.Now().UTC().Unix()))
	e.VerificationStatus = VerificationPending
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	_, err = r.db.Exec(`INSERT INTO employer_profile
		(id, user_id, company_name, email, website, description, logo_image_id, slug, verification_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.UserID, e.CompanyName, e.Email, e.Website, e.Description, nullable(e.LogoImageID), e.Slug, e.VerificationStatus, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return Employer{}, err
	}
	return e, nil
}

func (r *Repository) UpdateEmployer(e Employer) error {
	_, err := r.db.Exec(`UPDATE employer_profile
		SET company_name = $1, website = $2, description = $3, logo_image_id = $4, updated_at = $5
		WHERE id = $6`,
		e.CompanyName, e.Website, e.Description, nullable(e.LogoImageID), time.Now().UTC(), e.ID)
	return err
}

func (r *Repository) EmployerByID(id string) (Employer, error) {
	return r.employerBy(`id = $1`, id)
}

func (r *Repository) EmployerByUserID(userID string) (Employer, error) {
	return r.employerBy(`user_id = $1`, userID)
}

func (r *Repository) EmployerBySlug(slug string) (Employer, error) {
	return r.employerBy(`slug = $1`, slug)
}

func (r *Repository) employerBy(where string, arg interface{}) (Employer, error) {
	e := Employer{}
	row := r.db.QueryRow(`SELECT id, user_id, company_name, email, website, description, logo_image_id, slug, verification_status, verification_remark, verified_at, verified_by, created_at, updated_at
		FROM employer_profile WHERE `+where, arg)
	if err := scanEmployer(row, &e); err != nil {
		return e, err
	}
	return e, nil
}

// SaveDocument stores a reference to an uploaded verification document.
func (r *Repository) SaveDocument(employerID, mediaID, documentType string) (Document, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return Document{}, err
	}
	d := Document{
		ID:           id.String(),
		EmployerID:   employerID,
		MediaID:      mediaID,
		DocumentType: documentType,
		UploadedAt:   time.Now().UTC(),
	}
	_, err = r.db.Exec(`INSERT INTO employer_document (id, employer_id, media_id, document_type, uploaded_at) VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.EmployerID, d.MediaID, d.DocumentType, d.UploadedAt)
	if err != nil {
		return Document{}, err
	}
	return d, nil
}

func (r *Repository) DocumentsByEmployer(employerID string) ([]Document, error) {
	docs := []Document{}
	rows, err := r.db.Query(`SELECT id, employer_id, media_id, document_type, uploaded_at FROM employer_document WHERE employer_id = $1 ORDER BY uploaded_at ASC`, employerID)
	if err != nil {
		return docs, err
	}
	defer rows.Close()
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.EmployerID, &d.MediaID, &d.DocumentType, &d.UploadedAt); err != nil {
			return docs, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// VerifyEmployer marks the employer verified, recording the admin and remark.
func (r *Repository) VerifyEmployer(employerID, adminID, remark string) error {
	return r.setVerification(employerID, adminID, remark, VerificationVerified)
}

// RejectEmployer marks the employer rejected, recording the admin and remark.
func (r *Repository) RejectEmployer(employerID, adminID, remark string) error {
	return r.setVerification(employerID, adminID, remark, VerificationRejected)
}

func (r *Repository) setVerification(employerID, adminID, remark, status string) error {
	res, err := r.db.Exec(`UPDATE employer_profile
		SET verification_status = $1, verification_remark = $2, verified_at = $3, verified_by = $4
		WHERE id = $5`,
		status, remark, time.Now().UTC(), adminID, employerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PendingVerification lists employers waiting for an admin decision, oldest first.
func (r *Repository) PendingVerification() ([]Employer, error) {
	employers := []Employer{}
	rows, err := r.db.Query(`SELECT id, user_id, company_name, email, website, description, logo_image_id, slug, verification_status, verification_remark, verified_at, verified_by, created_at, updated_at
		FROM employer_profile WHERE verification_status = $1 ORDER BY created_at ASC`, VerificationPending)
	if err != nil {
		return employers, err
	}
	defer rows.Close()
	for rows.Next() {
		var e Employer
		if err := scanEmployer(rows, &e); err != nil {
			return employers, err
		}
		employers = append(employers, e)
	}
	return employers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployer(row rowScanner, e *Employer) error {
	var logoImageID, verifiedBy sql.NullString
	var verifiedAt sql.NullTime
	err := row.Scan(&e.ID, &e.UserID, &e.CompanyName, &e.Email, &e.Website, &e.Description, &logoImageID, &e.Slug,
		&e.VerificationStatus, &e.VerificationRemark, &verifiedAt, &verifiedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return err
	}
	e.LogoImageID = logoImageID.String
	e.VerifiedBy = verifiedBy.String
	if verifiedAt.Valid {
		t := verifiedAt.Time
		e.VerifiedAt = &t
	}
	e.CreatedAtHumanised = humanize.Time(e.CreatedAt)
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
