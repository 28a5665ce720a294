package candidate

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMarksheet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectExec("UPDATE candidate_profile SET marksheet_id").
		WithArgs("media-1", sqlmock.AnyArg(), "cand-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateMarksheet("cand-1", "media-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateProfileByUserIDScansMarksheet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "name", "email", "phone", "location", "resume_headline", "profile_summary",
		"skills", "education", "image_id", "resume_id", "marksheet_id", "slug", "created_at", "updated_at",
	}).AddRow(
		"cand-1", "user-1", "Jane Doe", "jane@example.com", "555", "Springfield", "", "",
		"{go,postgres}", []byte(`[]`), nil, "resume-1", "media-1", "jane-doe-1", now, now,
	)
	mock.ExpectQuery("FROM candidate_profile WHERE user_id").WithArgs("user-1").WillReturnRows(rows)

	cand, err := repo.CandidateProfileByUserID("user-1")
	require.NoError(t, err)
	assert.Equal(t, "media-1", cand.MarksheetID)
	assert.Equal(t, "resume-1", cand.ResumeID)
	assert.Empty(t, cand.ImageID)
	assert.Equal(t, []string{"go", "postgres"}, cand.Skills)
	assert.NoError(t, mock.ExpectationsWereMet())
}
