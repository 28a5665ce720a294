package job

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/segmentio/ksuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// SaveDraft stores a new job posting awaiting admin approval.
func (r *Repository) SaveDraft(employerID, company string, rq *JobRq) (Job, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return Job{}, err
	}
	currency := rq.SalaryCurrency
	if currency == "" {
		currency = "USD"
	}
	j := Job{
		ID:             id.String(),
		EmployerID:     employerID,
		JobTitle:       rq.JobTitle,
		Company:        company,
		Location:       rq.Location,
		SalaryMin:      rq.SalaryMin,
		SalaryMax:      rq.SalaryMax,
		SalaryCurrency: currency,
		Description:    rq.Description,
		Perks:          rq.Perks,
		HowToApply:     rq.HowToApply,
		Slug:           slug.Make(fmt.Sprintf("%s %s %d", rq.JobTitle, company, time.Now().UTC().Unix())),
		CreatedAt:      time.Now().UTC(),
	}
	_, err = r.db.Exec(`INSERT INTO job
		(id, employer_id, job_title, company, location, salary_min, salary_max, salary_currency, description, perks, how_to_apply, slug, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		j.ID, j.EmployerID, j.JobTitle, j.Company, j.Location, j.SalaryMin, j.SalaryMax, j.SalaryCurrency,
		j.Description, j.Perks, j.HowToApply, j.Slug, j.CreatedAt)
	if err != nil {
		return Job{}, err
	}
	j.enrich()
	return j, nil
}

func (r *Repository) UpdateJob(jobID string, rq *JobRqUpdate) error {
	_, err := r.db.Exec(`UPDATE job
		SET job_title = $1, location = $2, salary_min = $3, salary_max = $4, salary_currency = $5, description = $6, perks = $7, how_to_apply = $8
		WHERE id = $9`,
		rq.JobTitle, rq.Location, rq.SalaryMin, rq.SalaryMax, rq.SalaryCurrency, rq.Description, rq.Perks, rq.HowToApply, jobID)
	return err
}

func (r *Repository) ApproveJob(jobID string) error {
	_, err := r.db.Exec(`UPDATE job SET approved_at = NOW() WHERE id = $1`, jobID)
	return err
}

func (r *Repository) ExpireJob(jobID string) error {
	_, err := r.db.Exec(`UPDATE job SET expired_at = NOW() WHERE id = $1`, jobID)
	return err
}

const jobColumns = `id, employer_id, job_title, company, location, salary_min, salary_max, salary_currency, description, perks, how_to_apply, slug, created_at, approved_at, expired_at`

func (r *Repository) JobByID(id string) (Job, error) {
	row := r.db.QueryRow(`SELECT `+jobColumns+` FROM job WHERE id = $1`, id)
	return scanJob(row)
}

func (r *Repository) JobBySlug(jobSlug string) (Job, error) {
	row := r.db.QueryRow(`SELECT `+jobColumns+` FROM job WHERE slug = $1`, jobSlug)
	return scanJob(row)
}

func (r *Repository) JobsByEmployer(employerID string) ([]Job, error) {
	return r.jobsQuery(`SELECT `+jobColumns+` FROM job WHERE employer_id = $1 ORDER BY created_at DESC`, employerID)
}

// ApprovedJobs returns live (approved, not expired) jobs newest first,
// filtered by optional location and keyword, paginated.
func (r *Repository) ApprovedJobs(location, keyword string, pageID, jobsPerPage int) ([]Job, int, error) {
	offset := (pageID - 1) * jobsPerPage
	var total int
	countRow := r.db.QueryRow(`SELECT COUNT(*) FROM job
		WHERE approved_at IS NOT NULL AND expired_at IS NULL
		AND ($1 = '' OR location ILIKE '%' || $1 || '%')
		AND ($2 = '' OR job_title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')`,
		location, keyword)
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, err
	}
	jobs, err := r.jobsQuery(`SELECT `+jobColumns+` FROM job
		WHERE approved_at IS NOT NULL AND expired_at IS NULL
		AND ($1 = '' OR location ILIKE '%' || $1 || '%')
		AND ($2 = '' OR job_title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		location, keyword, jobsPerPage, offset)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// PendingApprovalJobs lists drafts awaiting admin review, oldest first.
func (r *Repository) PendingApprovalJobs() ([]Job, error) {
	return r.jobsQuery(`SELECT ` + jobColumns + ` FROM job WHERE approved_at IS NULL AND expired_at IS NULL ORDER BY created_at ASC`)
}

// NewJobsLastWeek counts approved jobs created in the last 7 days.
func (r *Repository) NewJobsLastWeek() (int, error) {
	var c int
	row := r.db.QueryRow(`SELECT COUNT(*) FROM job WHERE approved_at IS NOT NULL AND created_at > NOW() - INTERVAL '7 DAYS'`)
	if err := row.Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

// MarkJobsExpired expires approved jobs older than the given number of days.
func (r *Repository) MarkJobsExpired(olderThanDays int) (int64, error) {
	res, err := r.db.Exec(`UPDATE job SET expired_at = NOW() WHERE expired_at IS NULL AND approved_at IS NOT NULL AND approved_at < NOW() - ($1 || ' DAYS')::INTERVAL`, olderThanDays)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) jobsQuery(query string, args ...interface{}) ([]Job, error) {
	jobs := []Job{}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return jobs, err
	}
	defer rows.Close()
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	var approvedAt, expiredAt sql.NullTime
	err := row.Scan(&j.ID, &j.EmployerID, &j.JobTitle, &j.Company, &j.Location, &j.SalaryMin, &j.SalaryMax, &j.SalaryCurrency,
		&j.Description, &j.Perks, &j.HowToApply, &j.Slug, &j.CreatedAt, &approvedAt, &expiredAt)
	if err != nil {
		return j, err
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		j.ApprovedAt = &t
	}
	if expiredAt.Valid {
		t := expiredAt.Time
		j.ExpiredAt = &t
	}
	j.enrich()
	return j, nil
}
