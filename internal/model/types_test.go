package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintStableAcrossCaseAndSpacing(t *testing.T) {
	a := &JobRecord{Title: "Software Engineer Intern", Company: "Acme Corp", ApplyURL: "https://acme.example/jobs/1"}
	b := &JobRecord{Title: "software   engineer intern", Company: "ACME CORP.", ApplyURL: "HTTPS://ACME.EXAMPLE/JOBS/1"}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintDistinguishesRecords(t *testing.T) {
	a := &JobRecord{Title: "Software Engineer Intern", Company: "Acme", ApplyURL: "https://acme.example/jobs/1"}
	b := &JobRecord{Title: "Software Engineer Intern", Company: "Acme", ApplyURL: "https://acme.example/jobs/2"}

	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name string
		rec  JobRecord
		want bool
	}{
		{"all fields", JobRecord{Title: "SDE", Company: "Acme", ApplyURL: "https://x"}, true},
		{"missing title", JobRecord{Company: "Acme", ApplyURL: "https://x"}, false},
		{"whitespace company", JobRecord{Title: "SDE", Company: "   ", ApplyURL: "https://x"}, false},
		{"missing url", JobRecord{Title: "SDE", Company: "Acme"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Complete())
		})
	}
}

func TestFetchOutcomeRetryable(t *testing.T) {
	assert.True(t, (&FetchOutcome{Status: OutcomeRateLimited}).Retryable())
	assert.True(t, (&FetchOutcome{Status: OutcomeBlocked}).Retryable())
	assert.False(t, (&FetchOutcome{Status: OutcomeSuccess}).Retryable())
	assert.False(t, (&FetchOutcome{Status: OutcomeParseEmpty}).Retryable())
	assert.False(t, (&FetchOutcome{Status: OutcomeFailed}).Retryable())
}
