package model

import (
	"strings"
	"time"
	"unicode"
)

// JobType classifies a posting as internship, full-time, or both.
type JobType string

const (
	TypeInternship JobType = "INTERNSHIP"
	TypeFullTime   JobType = "FULL_TIME"
	TypeBoth       JobType = "BOTH"
	TypeUnknown    JobType = "UNKNOWN"
)

// JobRecord is the canonical unit flowing through the pipeline and exposed to
// downstream consumers. Title, Company, and ApplyURL are guaranteed non-empty
// for any record that crosses the adapter boundary.
type JobRecord struct {
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Description     string    `json:"description,omitempty"`
	Location        string    `json:"location,omitempty"`
	Salary          string    `json:"salary,omitempty"`
	ApplyURL        string    `json:"apply_url"`
	Source          string    `json:"source"`
	JobType         JobType   `json:"job_type"`
	Confidence      float64   `json:"confidence,omitempty"`
	PostedAt        time.Time `json:"posted_at"`
	PostedRaw       string    `json:"-"`
	Deadline        time.Time `json:"deadline,omitempty"`
	ExperienceYears int       `json:"experience_years"`
	ScrapedAt       time.Time `json:"scraped_at"`
	LinkVerified    bool      `json:"link_verified"`
}

// Complete reports whether all mandatory fields are populated.
func (r *JobRecord) Complete() bool {
	return strings.TrimSpace(r.Title) != "" &&
		strings.TrimSpace(r.Company) != "" &&
		strings.TrimSpace(r.ApplyURL) != ""
}

// Fingerprint is the dedup key: lowercase (title, company, apply URL) with all
// whitespace and punctuation stripped. Stable under re-ingestion of the same
// record regardless of case or spacing differences.
func Fingerprint(r *JobRecord) string {
	var b strings.Builder
	b.Grow(len(r.Title) + len(r.Company) + len(r.ApplyURL))
	for _, part := range []string{r.Title, r.Company, r.ApplyURL} {
		for _, c := range strings.ToLower(part) {
			if unicode.IsLetter(c) || unicode.IsDigit(c) {
				b.WriteRune(c)
			}
		}
	}
	return b.String()
}

// SourceCycleStats carries per-source counters for a single cycle.
type SourceCycleStats struct {
	Attempted bool   `json:"attempted"`
	Succeeded bool   `json:"succeeded"`
	JobsFound int    `json:"jobs_found"`
	LastError string `json:"last_error,omitempty"`
}

// ScrapeCycleResult is one complete, atomically-published generation.
type ScrapeCycleResult struct {
	CycleID     string                      `json:"cycle_id"`
	Records     []JobRecord                 `json:"records"`
	SourceStats map[string]SourceCycleStats `json:"source_stats"`
	Duplicates  int                         `json:"duplicates_removed"`
	StartedAt   time.Time                   `json:"started_at"`
	CompletedAt time.Time                   `json:"completed_at"`
}

// Tier identifies how a page was retrieved.
type Tier string

const (
	TierStatic   Tier = "static"
	TierRendered Tier = "rendered"
)

// OutcomeStatus is the explicit fetch result consumed by the retry controller
// instead of signalling anti-bot detection through errors.
type OutcomeStatus string

const (
	OutcomeSuccess     OutcomeStatus = "success"
	OutcomeRateLimited OutcomeStatus = "rate_limited"
	OutcomeBlocked     OutcomeStatus = "blocked"
	OutcomeParseEmpty  OutcomeStatus = "parse_empty"
	OutcomeFailed      OutcomeStatus = "failed"
)

// FetchOutcome is the result of one fetch attempt, static or rendered.
type FetchOutcome struct {
	Status     OutcomeStatus
	HTML       string
	Title      string
	HTTPStatus int
	Tier       Tier
}

// Retryable reports whether the outcome should be retried with backoff.
func (o *FetchOutcome) Retryable() bool {
	return o.Status == OutcomeRateLimited || o.Status == OutcomeBlocked
}
