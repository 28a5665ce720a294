package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSalaryToSalaryRangeString(t *testing.T) {
	tests := []struct {
		name      string
		salaryMin int64
		salaryMax int64
		currency  string
		want      string
	}{
		{"usd thousands", 50000, 90000, "USD", "$50k - $90k"},
		{"eur thousands", 40000, 60000, "EUR", "€40k - €60k"},
		{"below thousand", 500, 900, "USD", "$500 - $900"},
		{"unknown currency falls back to dollar", 50000, 90000, "XYZ", "$50k - $90k"},
		{"inr", 300000, 500000, "INR", "₹300k - ₹500k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, salaryToSalaryRangeString(tt.salaryMin, tt.salaryMax, tt.currency))
		})
	}
}

func TestRenderDescriptionSanitisesHTML(t *testing.T) {
	out := renderDescription("# Senior Gopher\n\nwe need **you**<script>alert(1)</script>")
	assert.Contains(t, out, "<strong>you</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderDescriptionLinks(t *testing.T) {
	out := renderDescription("[apply here](https://example.com/jobs)")
	assert.Contains(t, out, `href="https://example.com/jobs"`)
	assert.Contains(t, out, "nofollow")
}
