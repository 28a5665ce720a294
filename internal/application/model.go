package application

import (
	"errors"
	"time"
)

// Status is the overall status of an application. Any status may follow any
// other, pending is the only initial one. Hired and rejected are terminal by
// convention only.
type Status string

const (
	StatusPending     Status = "pending"
	StatusShortlisted Status = "shortlisted"
	StatusInterviewed Status = "interviewed"
	StatusHired       Status = "hired"
	StatusRejected    Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShortlisted, StatusInterviewed, StatusHired, StatusRejected:
		return true
	default:
		return false
	}
}

// RoundStatus is the outcome of a single interview round, independent of the
// application's overall status.
type RoundStatus string

const (
	RoundPending RoundStatus = "pending"
	RoundPassed  RoundStatus = "passed"
	RoundFailed  RoundStatus = "failed"
)

func (s RoundStatus) Valid() bool {
	switch s {
	case RoundPending, RoundPassed, RoundFailed:
		return true
	default:
		return false
	}
}

// ActorModel tags which kind of account performed a status change.
type ActorModel string

const (
	ActorModelEmployer ActorModel = "Employer"
	ActorModelAdmin    ActorModel = "Admin"
)

func (m ActorModel) Valid() bool {
	return m == ActorModelEmployer || m == ActorModelAdmin
}

// Actor identifies the employer or admin performing a review action.
type Actor struct {
	ID    string
	Model ActorModel
}

func (a Actor) Validate() error {
	if a.ID == "" {
		return errors.New("actor id cannot be empty")
	}
	if !a.Model.Valid() {
		return errors.New("actor model must be Employer or Admin")
	}
	return nil
}

// GuestApplicant identifies an applicant without an account.
type GuestApplicant struct {
	Name  string
	Email string
	Phone string
}

// ApplicantIdentity is either an authenticated candidate reference or a guest
// tuple. Exactly one of the two must be populated.
type ApplicantIdentity struct {
	CandidateID string
	Guest       *GuestApplicant
}

func (a ApplicantIdentity) IsGuest() bool {
	return a.CandidateID == ""
}

func (a ApplicantIdentity) Validate() error {
	if a.CandidateID != "" && a.Guest != nil {
		return errors.New("applicant cannot be both candidate and guest")
	}
	if a.CandidateID == "" && a.Guest == nil {
		return errors.New("applicant must be a candidate or a guest")
	}
	if a.Guest != nil {
		if a.Guest.Name == "" || a.Guest.Email == "" || a.Guest.Phone == "" {
			return errors.New("guest applicant requires name, email and phone")
		}
	}
	return nil
}

// ResumeAttachment is the metadata produced by the upload handler, stored
// verbatim. The payload itself lives in the media store.
type ResumeAttachment struct {
	MediaID      string `json:"media_id"`
	FileName     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Size         int    `json:"size"`
	MediaType    string `json:"mimetype"`
}

type InterviewRound struct {
	Round    int         `json:"round"`
	Name     string      `json:"name"`
	Status   RoundStatus `json:"status"`
	Feedback string      `json:"feedback"`
}

// StatusChange is one entry of the append-only audit trail. ChangedBy is empty
// for guest-initiated creation.
type StatusChange struct {
	Status         Status     `json:"status"`
	ChangedAt      time.Time  `json:"changed_at"`
	ChangedBy      string     `json:"changed_by,omitempty"`
	ChangedByModel ActorModel `json:"changed_by_model,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

type Application struct {
	ID                   string            `json:"id"`
	JobID                string            `json:"job_id"`
	CandidateID          string            `json:"candidate_id,omitempty"`
	EmployerID           string            `json:"employer_id,omitempty"`
	IsGuestApplication   bool              `json:"is_guest_application"`
	ApplicantName        string            `json:"applicant_name,omitempty"`
	ApplicantEmail       string            `json:"applicant_email,omitempty"`
	ApplicantPhone       string            `json:"applicant_phone,omitempty"`
	Status               Status            `json:"status"`
	CoverLetter          string            `json:"cover_letter,omitempty"`
	Resume               *ResumeAttachment `json:"resume,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	EmployerRemarks      string            `json:"employer_remarks,omitempty"`
	IsSelectedForProcess bool              `json:"is_selected_for_process"`
	AppliedAt            time.Time         `json:"applied_at"`
	AppliedAtHumanised   string            `json:"applied_at_humanised,omitempty"`
	ReviewedAt           *time.Time        `json:"reviewed_at,omitempty"`
	InterviewRounds      []InterviewRound  `json:"interview_rounds"`
	StatusHistory        []StatusChange    `json:"status_history"`
}
