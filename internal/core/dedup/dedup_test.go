package dedup

import (
	"strings"
	"testing"
	"unicode/utf8"

	"jobradar/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(title, company, url string) model.JobRecord {
	return model.JobRecord{Title: title, Company: company, ApplyURL: url}
}

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	in := []model.JobRecord{
		rec("SDE Intern", "Acme", "https://a/1"),
		rec("Backend Intern", "Beta", "https://b/1"),
		rec("sde intern", "ACME", "https://a/1"),
		rec("SDE Intern", "Acme", "https://a/2"),
	}
	in[0].Source = "internshala"
	in[2].Source = "linkedin"

	out, removed := Dedup(in)
	require.Len(t, out, 3)
	assert.Equal(t, 1, removed)
	// first occurrence wins, order preserved
	assert.Equal(t, "internshala", out[0].Source)
	assert.Equal(t, "Beta", out[1].Company)
	assert.Equal(t, "https://a/2", out[2].ApplyURL)
}

func TestDedupIdempotent(t *testing.T) {
	in := []model.JobRecord{
		rec("SDE", "Acme", "https://a/1"),
		rec("SDE", "Acme", "https://a/1"),
	}
	once, removed := Dedup(in)
	require.Equal(t, 1, removed)

	twice, removed := Dedup(once)
	assert.Equal(t, 0, removed)
	assert.Equal(t, once, twice)
}

func TestDedupEmptyInput(t *testing.T) {
	out, removed := Dedup(nil)
	assert.Empty(t, out)
	assert.Zero(t, removed)
}

func TestTruncateCapsOversizedFields(t *testing.T) {
	r := rec(strings.Repeat("t", 300), strings.Repeat("c", 300), "https://a/"+strings.Repeat("u", 1100))
	r.Description = strings.Repeat("d", 6000)

	Truncate(&r)

	assert.Len(t, r.Title, 255)
	assert.True(t, strings.HasSuffix(r.Title, "..."))
	assert.Len(t, r.Company, 255)
	assert.Len(t, r.Description, 5000)
	assert.True(t, strings.HasSuffix(r.Description, "..."))
	assert.Len(t, r.ApplyURL, 1000)
}

func TestTruncateCutsOnRuneBoundary(t *testing.T) {
	r := rec(strings.Repeat("日本語", 100), "Acme", "https://a/1")
	r.Description = strings.Repeat("नमस्ते ", 400)

	Truncate(&r)

	assert.True(t, utf8.ValidString(r.Title))
	assert.LessOrEqual(t, len(r.Title), 255)
	assert.True(t, strings.HasSuffix(r.Title, "..."))
	assert.True(t, utf8.ValidString(r.Description))
	assert.LessOrEqual(t, len(r.Description), 5000)
}

func TestTruncateLeavesSmallFieldsAlone(t *testing.T) {
	r := rec("SDE Intern", "Acme", "https://a/1")
	r.Description = "short"
	Truncate(&r)
	assert.Equal(t, "SDE Intern", r.Title)
	assert.Equal(t, "short", r.Description)
}
