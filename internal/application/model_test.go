package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusShortlisted, true},
		{StatusInterviewed, true},
		{StatusHired, true},
		{StatusRejected, true},
		{Status("archived"), false},
		{Status(""), false},
		{Status("Pending"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}

func TestRoundStatusValid(t *testing.T) {
	tests := []struct {
		status RoundStatus
		want   bool
	}{
		{RoundPending, true},
		{RoundPassed, true},
		{RoundFailed, true},
		{RoundStatus("skipped"), false},
		{RoundStatus(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}

func TestActorValidate(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		wantErr bool
	}{
		{"employer", Actor{ID: "emp1", Model: ActorModelEmployer}, false},
		{"admin", Actor{ID: "adm1", Model: ActorModelAdmin}, false},
		{"missing id", Actor{Model: ActorModelAdmin}, true},
		{"missing model", Actor{ID: "emp1"}, true},
		{"unknown model", Actor{ID: "emp1", Model: ActorModel("Candidate")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.actor.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplicantIdentityValidate(t *testing.T) {
	guest := &GuestApplicant{Name: "Guest", Email: "g@x.com", Phone: "555"}
	tests := []struct {
		name      string
		applicant ApplicantIdentity
		wantErr   bool
	}{
		{"candidate only", ApplicantIdentity{CandidateID: "c1"}, false},
		{"guest only", ApplicantIdentity{Guest: guest}, false},
		{"both set", ApplicantIdentity{CandidateID: "c1", Guest: guest}, true},
		{"neither set", ApplicantIdentity{}, true},
		{"guest missing phone", ApplicantIdentity{Guest: &GuestApplicant{Name: "Guest", Email: "g@x.com"}}, true},
		{"guest missing name", ApplicantIdentity{Guest: &GuestApplicant{Email: "g@x.com", Phone: "555"}}, true},
		{"guest missing email", ApplicantIdentity{Guest: &GuestApplicant{Name: "Guest", Phone: "555"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.applicant.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplicantIdentityIsGuest(t *testing.T) {
	assert.False(t, ApplicantIdentity{CandidateID: "c1"}.IsGuest())
	assert.True(t, ApplicantIdentity{Guest: &GuestApplicant{Name: "g", Email: "e", Phone: "p"}}.IsGuest())
}
