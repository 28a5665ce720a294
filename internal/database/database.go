package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

func GetDbConn(databaseUser string, databasePassword string, databaseHost string, databasePort string, databaseName string, sslMode string) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		databaseUser,
		databasePassword,
		databaseHost,
		databasePort,
		databaseName,
		sslMode,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open db connection")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "unable to ping db")
	}
	return db, nil
}

func CloseDbConn(conn *sql.DB) {
	conn.Close()
}

// EnsureSchema creates missing tables and indexes. Statements are idempotent
// so it can run on every boot.
func EnsureSchema(conn *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id CHAR(27) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			user_type VARCHAR(20) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS password_reset_token (
			token CHAR(27) PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			used_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS media (
			id CHAR(27) PRIMARY KEY,
			bytes BYTEA NOT NULL,
			media_type VARCHAR(100) NOT NULL,
			file_name VARCHAR(255) NOT NULL DEFAULT '',
			file_size INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS candidate_profile (
			id CHAR(27) PRIMARY KEY,
			user_id CHAR(27) NOT NULL REFERENCES users (id),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			phone VARCHAR(20) NOT NULL DEFAULT '',
			location VARCHAR(255) NOT NULL DEFAULT '',
			resume_headline TEXT NOT NULL DEFAULT '',
			profile_summary TEXT NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT '{}',
			education JSONB NOT NULL DEFAULT '[]',
			image_id CHAR(27),
			resume_id CHAR(27),
			marksheet_id CHAR(27),
			slug VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS placement_profile (
			id CHAR(27) PRIMARY KEY,
			user_id CHAR(27) NOT NULL REFERENCES users (id),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			phone VARCHAR(20) NOT NULL DEFAULT '',
			college_name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS employer_profile (
			id CHAR(27) PRIMARY KEY,
			user_id CHAR(27) NOT NULL REFERENCES users (id),
			company_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			website VARCHAR(255) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			logo_image_id CHAR(27),
			slug VARCHAR(255) NOT NULL UNIQUE,
			verification_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			verification_remark TEXT NOT NULL DEFAULT '',
			verified_at TIMESTAMP,
			verified_by CHAR(27),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS employer_document (
			id CHAR(27) PRIMARY KEY,
			employer_id CHAR(27) NOT NULL REFERENCES employer_profile (id),
			media_id CHAR(27) NOT NULL,
			document_type VARCHAR(50) NOT NULL,
			uploaded_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS job (
			id CHAR(27) PRIMARY KEY,
			employer_id CHAR(27) NOT NULL REFERENCES employer_profile (id),
			job_title VARCHAR(255) NOT NULL,
			company VARCHAR(255) NOT NULL,
			location VARCHAR(255) NOT NULL,
			salary_min BIGINT NOT NULL DEFAULT 0,
			salary_max BIGINT NOT NULL DEFAULT 0,
			salary_currency VARCHAR(4) NOT NULL DEFAULT 'USD',
			description TEXT NOT NULL,
			perks TEXT NOT NULL DEFAULT '',
			how_to_apply TEXT NOT NULL DEFAULT '',
			slug VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL,
			approved_at TIMESTAMP,
			expired_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS application (
			id CHAR(27) PRIMARY KEY,
			job_id CHAR(27) NOT NULL REFERENCES job (id),
			candidate_id CHAR(27) REFERENCES candidate_profile (id),
			employer_id CHAR(27) REFERENCES employer_profile (id),
			is_guest_application BOOLEAN NOT NULL DEFAULT FALSE,
			applicant_name VARCHAR(255),
			applicant_email VARCHAR(255),
			applicant_phone VARCHAR(20),
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			cover_letter TEXT NOT NULL DEFAULT '',
			resume_media_id CHAR(27),
			resume_file_name VARCHAR(255) NOT NULL DEFAULT '',
			resume_original_name VARCHAR(255) NOT NULL DEFAULT '',
			resume_size INTEGER NOT NULL DEFAULT 0,
			resume_media_type VARCHAR(100) NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			employer_remarks TEXT NOT NULL DEFAULT '',
			is_selected_for_process BOOLEAN NOT NULL DEFAULT FALSE,
			applied_at TIMESTAMP NOT NULL,
			reviewed_at TIMESTAMP
		)`,
		// uniqueness for authenticated applicants only, guests are exempt.
		// enforced here rather than with a read-then-write check so concurrent
		// duplicate applies cannot race past each other.
		`CREATE UNIQUE INDEX IF NOT EXISTS application_candidate_job_idx
			ON application (candidate_id, job_id) WHERE candidate_id IS NOT NULL`,
		`CREATE TABLE IF NOT EXISTS application_status_history (
			id BIGSERIAL PRIMARY KEY,
			application_id CHAR(27) NOT NULL REFERENCES application (id),
			status VARCHAR(20) NOT NULL,
			changed_at TIMESTAMP NOT NULL,
			changed_by CHAR(27),
			changed_by_model VARCHAR(20),
			notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS application_interview_round (
			application_id CHAR(27) NOT NULL REFERENCES application (id),
			round INTEGER NOT NULL,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			feedback TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (application_id, round)
		)`,
		`CREATE TABLE IF NOT EXISTS message (
			id CHAR(27) PRIMARY KEY,
			from_user_id CHAR(27) NOT NULL REFERENCES users (id),
			to_user_id CHAR(27) NOT NULL REFERENCES users (id),
			job_id CHAR(27) REFERENCES job (id),
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			delivered_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS saved_job (
			candidate_id CHAR(27) NOT NULL REFERENCES candidate_profile (id),
			job_id CHAR(27) NOT NULL REFERENCES job (id),
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (candidate_id, job_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return errors.Wrapf(err, "unable to run schema statement %q", stmt[:40])
		}
	}
	return nil
}
