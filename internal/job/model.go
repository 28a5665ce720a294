package job

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	blackfriday "gopkg.in/russross/blackfriday.v2"
)

type Job struct {
	ID             string     `json:"id"`
	EmployerID     string     `json:"employer_id"`
	JobTitle       string     `json:"job_title"`
	Company        string     `json:"company"`
	Location       string     `json:"location"`
	SalaryMin      int64      `json:"salary_min"`
	SalaryMax      int64      `json:"salary_max"`
	SalaryCurrency string     `json:"salary_currency"`
	Description    string     `json:"description"`
	Perks          string     `json:"perks"`
	HowToApply     string     `json:"how_to_apply"`
	Slug           string     `json:"slug"`
	CreatedAt      time.Time  `json:"created_at"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	ExpiredAt      *time.Time `json:"expired_at,omitempty"`

	SalaryRange        string `json:"salary_range"`
	DescriptionHTML    string `json:"description_html"`
	CreatedAtHumanised string `json:"created_at_humanised"`
}

// JobRq carries a new posting. The company name comes from the employer
// profile, not the request.
type JobRq struct {
	JobTitle       string `json:"job_title" validate:"required,max=255"`
	Location       string `json:"job_location" validate:"required,max=255"`
	SalaryMin      int64  `json:"salary_min" validate:"gte=0"`
	SalaryMax      int64  `json:"salary_max" validate:"gtefield=SalaryMin"`
	SalaryCurrency string `json:"salary_currency" validate:"omitempty,len=3"`
	Description    string `json:"job_description" validate:"required"`
	Perks          string `json:"perks"`
	HowToApply     string `json:"how_to_apply"`
}

type JobRqUpdate struct {
	JobTitle       string `json:"job_title" validate:"required,max=255"`
	Location       string `json:"job_location" validate:"required,max=255"`
	SalaryMin      int64  `json:"salary_min" validate:"gte=0"`
	SalaryMax      int64  `json:"salary_max" validate:"gtefield=SalaryMin"`
	SalaryCurrency string `json:"salary_currency" validate:"omitempty,len=3"`
	Description    string `json:"job_description" validate:"required"`
	Perks          string `json:"perks"`
	HowToApply     string `json:"how_to_apply"`
}

func salaryToSalaryRangeString(salaryMin, salaryMax int64, currency string) string {
	salaryMinStr := fmt.Sprintf("%d", salaryMin)
	salaryMaxStr := fmt.Sprintf("%d", salaryMax)
	if salaryMin > 1000 {
		salaryMinStr = fmt.Sprintf("%dk", salaryMin/1000)
	}
	if salaryMax > 1000 {
		salaryMaxStr = fmt.Sprintf("%dk", salaryMax/1000)
	}

	return fmt.Sprintf("%s%s - %s%s", currencySymbol(currency), salaryMinStr, currencySymbol(currency), salaryMaxStr)
}

func currencySymbol(currency string) string {
	symbols := map[string]string{
		"USD": "$",
		"EUR": "€",
		"JPY": "¥",
		"GBP": "£",
		"AUD": "A$",
		"CAD": "C$",
		"INR": "₹",
		"SGD": "S$",
		"CHF": "Fr",
		"BRL": "R$",
	}
	symbol, ok := symbols[currency]
	if !ok {
		return "$"
	}
	return symbol
}

// renderDescription turns the markdown job description into sanitised HTML.
func renderDescription(markdown string) string {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.Safelink |
			blackfriday.NofollowLinks |
			blackfriday.NoreferrerLinks |
			blackfriday.HrefTargetBlank,
	})
	unsafe := blackfriday.Run([]byte(markdown), blackfriday.WithRenderer(renderer))
	return string(bluemonday.UGCPolicy().SanitizeBytes(unsafe))
}

func (j *Job) enrich() {
	j.SalaryRange = salaryToSalaryRangeString(j.SalaryMin, j.SalaryMax, j.SalaryCurrency)
	j.DescriptionHTML = renderDescription(j.Description)
	j.CreatedAtHumanised = humanize.Time(j.CreatedAt)
}
