package application

import (
	"database/sql"
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lib/pq"
	"github.com/segmentio/ksuid"
)

var (
	// ErrNotFound is returned when an application id does not resolve.
	ErrNotFound = errors.New("application not found")
	// ErrDuplicateApplication is returned when an authenticated candidate has
	// already applied to the same job. Guest applications are never duplicates.
	ErrDuplicateApplication = errors.New("candidate already applied to this job")
)

const uniqueViolation = "23505"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// CreateApplication records a new application with status pending and appends
// the initial status history entry. The applicant is either an authenticated
// candidate or a guest tuple. Duplicate (candidate, job) pairs are rejected by
// the store's partial unique index, not by a read-then-write check.
func (r *Repository) CreateApplication(jobID string, applicant ApplicantIdentity, coverLetter string, resume *ResumeAttachment) (Application, error) {
	if err := applicant.Validate(); err != nil {
		return Application{}, err
	}
	id, err := ksuid.NewRandom()
	if err != nil {
		return Application{}, err
	}

	// denormalised owner reference for employer-side listings
	var employerID sql.NullString
	row := r.db.QueryRow(`SELECT employer_id FROM job WHERE id = $1`, jobID)
	if err := row.Scan(&employerID); err == sql.ErrNoRows {
		return Application{}, ErrNotFound
	} else if err != nil {
		return Application{}, err
	}

	var candidateID, applicantName, applicantEmail, applicantPhone sql.NullString
	if applicant.IsGuest() {
		applicantName = sql.NullString{String: applicant.Guest.Name, Valid: true}
		applicantEmail = sql.NullString{String: applicant.Guest.Email, Valid: true}
		applicantPhone = sql.NullString{String: applicant.Guest.Phone, Valid: true}
	} else {
		candidateID = sql.NullString{String: applicant.CandidateID, Valid: true}
	}
	var resumeMediaID sql.NullString
	var resumeFileName, resumeOriginalName, resumeMediaType string
	var resumeSize int
	if resume != nil {
		resumeMediaID = sql.NullString{String: resume.MediaID, Valid: true}
		resumeFileName = resume.FileName
		resumeOriginalName = resume.OriginalName
		resumeMediaType = resume.MediaType
		resumeSize = resume.Size
	}

	appliedAt := time.Now().UTC()
	tx, err := r.db.Begin()
	if err != nil {
		return Application{}, err
	}
	_, err = tx.Exec(`INSERT INTO application
		(id, job_id, candidate_id, employer_id, is_guest_application, applicant_name, applicant_email, applicant_phone, status, cover_letter, resume_media_id, resume_file_name, resume_original_name, resume_size, resume_media_type, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		id.String(), jobID, candidateID, employerID, applicant.IsGuest(), applicantName, applicantEmail, applicantPhone, StatusPending, coverLetter, resumeMediaID, resumeFileName, resumeOriginalName, resumeSize, resumeMediaType, appliedAt)
	if err != nil {
		tx.Rollback()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return Application{}, ErrDuplicateApplication
		}
		return Application{}, err
	}
	_, err = tx.Exec(`INSERT INTO application_status_history (application_id, status, changed_at, changed_by, changed_by_model, notes)
		VALUES ($1, $2, $3, $4, NULL, '')`,
		id.String(), StatusPending, appliedAt, candidateID)
	if err != nil {
		tx.Rollback()
		return Application{}, err
	}
	if err := tx.Commit(); err != nil {
		return Application{}, err
	}

	return r.ApplicationByID(id.String())
}

// ChangeStatus moves the application to newStatus and appends an audit entry.
// No transition restriction beyond enum membership: any status may follow any
// other.
func (r *Repository) ChangeStatus(applicationID string, newStatus Status, actor Actor, notes string) (Application, error) {
	if !newStatus.Valid() {
		return Application{}, errors.New("invalid application status")
	}
	if err := actor.Validate(); err != nil {
		return Application{}, err
	}
	changedAt := time.Now().UTC()
	tx, err := r.db.Begin()
	if err != nil {
		return Application{}, err
	}
	res, err := tx.Exec(`UPDATE application SET status = $1, reviewed_at = $2 WHERE id = $3`, newStatus, changedAt, applicationID)
	if err != nil {
		tx.Rollback()
		return Application{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return Application{}, err
	}
	if affected == 0 {
		tx.Rollback()
		return Application{}, ErrNotFound
	}
	_, err = tx.Exec(`INSERT INTO application_status_history (application_id, status, changed_at, changed_by, changed_by_model, notes)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		applicationID, newStatus, changedAt, actor.ID, actor.Model, notes)
	if err != nil {
		tx.Rollback()
		return Application{}, err
	}
	if err := tx.Commit(); err != nil {
		return Application{}, err
	}

	return r.ApplicationByID(applicationID)
}

// RecordInterviewRound upserts by round number: recording the same round twice
// overwrites its name, status and feedback. It never touches the parent status,
// promotion to an overall status is a separate ChangeStatus call.
func (r *Repository) RecordInterviewRound(applicationID string, round int, name string, status RoundStatus, feedback string) (Application, error) {
	if !status.Valid() {
		return Application{}, errors.New("invalid interview round status")
	}
	var exists bool
	row := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM application WHERE id = $1)`, applicationID)
	if err := row.Scan(&exists); err != nil {
		return Application{}, err
	}
	if !exists {
		return Application{}, ErrNotFound
	}
	_, err := r.db.Exec(`INSERT INTO application_interview_round (application_id, round, name, status, feedback)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (application_id, round)
		DO UPDATE SET name = EXCLUDED.name, status = EXCLUDED.status, feedback = EXCLUDED.feedback`,
		applicationID, round, name, status, feedback)
	if err != nil {
		return Application{}, err
	}

	return r.ApplicationByID(applicationID)
}

// SetSelectedForProcess flips the selection marker, orthogonal to status.
func (r *Repository) SetSelectedForProcess(applicationID string, flag bool) (Application, error) {
	res, err := r.db.Exec(`UPDATE application SET is_selected_for_process = $1 WHERE id = $2`, flag, applicationID)
	if err != nil {
		return Application{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Application{}, err
	}
	if affected == 0 {
		return Application{}, ErrNotFound
	}

	return r.ApplicationByID(applicationID)
}

// SetEmployerRemarks saves the employer's free-text review remarks.
func (r *Repository) SetEmployerRemarks(applicationID string, remarks string) (Application, error) {
	res, err := r.db.Exec(`UPDATE application SET employer_remarks = $1, reviewed_at = $2 WHERE id = $3`, remarks, time.Now().UTC(), applicationID)
	if err != nil {
		return Application{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Application{}, err
	}
	if affected == 0 {
		return Application{}, ErrNotFound
	}

	return r.ApplicationByID(applicationID)
}

const applicationColumns = `id, job_id, candidate_id, employer_id, is_guest_application, applicant_name, applicant_email, applicant_phone, status, cover_letter, resume_media_id, resume_file_name, resume_original_name, resume_size, resume_media_type, notes, employer_remarks, is_selected_for_process, applied_at, reviewed_at`

func (r *Repository) ApplicationByID(id string) (Application, error) {
	row := r.db.QueryRow(`SELECT `+applicationColumns+` FROM application WHERE id = $1`, id)
	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return Application{}, ErrNotFound
	}
	if err != nil {
		return Application{}, err
	}
	if err := r.loadRoundsAndHistory(&app); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (r *Repository) ApplicationsByCandidate(candidateID string) ([]Application, error) {
	return r.applicationsWhere(`candidate_id = $1`, candidateID)
}

func (r *Repository) ApplicationsByJob(jobID string) ([]Application, error) {
	return r.applicationsWhere(`job_id = $1`, jobID)
}

func (r *Repository) ApplicationsByEmployer(employerID string) ([]Application, error) {
	return r.applicationsWhere(`employer_id = $1`, employerID)
}

func (r *Repository) applicationsWhere(where string, arg interface{}) ([]Application, error) {
	apps := []Application{}
	rows, err := r.db.Query(`SELECT `+applicationColumns+` FROM application WHERE `+where+` ORDER BY applied_at DESC`, arg)
	if err != nil {
		return apps, err
	}
	defer rows.Close()
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return apps, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return apps, err
	}
	for i := range apps {
		if err := r.loadRoundsAndHistory(&apps[i]); err != nil {
			return apps, err
		}
	}
	return apps, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (Application, error) {
	var app Application
	var candidateID, employerID, applicantName, applicantEmail, applicantPhone, resumeMediaID sql.NullString
	var resumeFileName, resumeOriginalName, resumeMediaType string
	var resumeSize int
	var reviewedAt sql.NullTime
	err := row.Scan(
		&app.ID,
		&app.JobID,
		&candidateID,
		&employerID,
		&app.IsGuestApplication,
		&applicantName,
		&applicantEmail,
		&applicantPhone,
		&app.Status,
		&app.CoverLetter,
		&resumeMediaID,
		&resumeFileName,
		&resumeOriginalName,
		&resumeSize,
		&resumeMediaType,
		&app.Notes,
		&app.EmployerRemarks,
		&app.IsSelectedForProcess,
		&app.AppliedAt,
		&reviewedAt,
	)
	if err != nil {
		return app, err
	}
	app.CandidateID = candidateID.String
	app.EmployerID = employerID.String
	app.ApplicantName = applicantName.String
	app.ApplicantEmail = applicantEmail.String
	app.ApplicantPhone = applicantPhone.String
	if resumeMediaID.Valid {
		app.Resume = &ResumeAttachment{
			MediaID:      resumeMediaID.String,
			FileName:     resumeFileName,
			OriginalName: resumeOriginalName,
			Size:         resumeSize,
			MediaType:    resumeMediaType,
		}
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		app.ReviewedAt = &t
	}
	app.AppliedAtHumanised = humanize.Time(app.AppliedAt)
	return app, nil
}

func (r *Repository) loadRoundsAndHistory(app *Application) error {
	app.InterviewRounds = []InterviewRound{}
	rows, err := r.db.Query(`SELECT round, name, status, feedback FROM application_interview_round WHERE application_id = $1 ORDER BY round ASC`, app.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ir InterviewRound
		if err := rows.Scan(&ir.Round, &ir.Name, &ir.Status, &ir.Feedback); err != nil {
			return err
		}
		app.InterviewRounds = append(app.InterviewRounds, ir)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	app.StatusHistory = []StatusChange{}
	histRows, err := r.db.Query(`SELECT status, changed_at, changed_by, changed_by_model, notes FROM application_status_history WHERE application_id = $1 ORDER BY id ASC`, app.ID)
	if err != nil {
		return err
	}
	defer histRows.Close()
	for histRows.Next() {
		var sc StatusChange
		var changedBy, changedByModel sql.NullString
		if err := histRows.Scan(&sc.Status, &sc.ChangedAt, &changedBy, &changedByModel, &sc.Notes); err != nil {
			return err
		}
		sc.ChangedBy = changedBy.String
		sc.ChangedByModel = ActorModel(changedByModel.String)
		app.StatusHistory = append(app.StatusHistory, sc)
	}
	return histRows.Err()
}
