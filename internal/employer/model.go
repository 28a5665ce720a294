package employer

import "time"

const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

type Employer struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	CompanyName        string     `json:"company_name"`
	Email              string     `json:"email"`
	Website            string     `json:"website"`
	Description        string     `json:"description"`
	LogoImageID        string     `json:"logo_image_id,omitempty"`
	Slug               string     `json:"slug"`
	VerificationStatus string     `json:"verification_status"`
	VerificationRemark string     `json:"verification_remark"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	VerifiedBy         string     `json:"verified_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	CreatedAtHumanised string `json:"created_at_humanised"`
}

// Document is one verification document uploaded by the employer and reviewed
// by an admin.
type Document struct {
	ID           string    `json:"id"`
	EmployerID   string    `json:"employer_id"`
	MediaID      string    `json:"media_id"`
	DocumentType string    `json:"document_type"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
