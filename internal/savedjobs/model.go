package savedjobs

import (
	"time"
)

type SavedJob struct {
	CandidateID string
	JobID       string
	SavedAt     time.Time
}
