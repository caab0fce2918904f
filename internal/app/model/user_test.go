package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLandingRoute(t *testing.T) {
	tests := []struct {
		status VerificationStatus
		want   string
	}{
		{VerificationNotStarted, "document-upload"},
		{VerificationNotSubmitted, "document-upload"},
		{VerificationPending, "status-page"},
		{VerificationRejected, "status-page"},
		{VerificationApproved, "full-dashboard"},
		{VerificationStatus("garbage"), "document-upload"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, LandingRoute(tt.status))
		})
	}
}
