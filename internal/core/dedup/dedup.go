// Package dedup removes duplicate postings within a cycle. The same job is
// routinely listed on several portals, and some portals repeat cards across
// pages.
package dedup

import (
	"unicode/utf8"

	"jobradar/internal/model"
)

const (
	maxDescriptionLen = 5000
	maxTitleLen       = 255
	maxCompanyLen     = 255
	maxURLLen         = 1000
)

// Truncate caps oversized fields before fingerprinting so pathological pages
// cannot bloat the cache. Truncated text fields end with "..." inside the cap.
func Truncate(r *model.JobRecord) {
	r.Title = capString(r.Title, maxTitleLen)
	r.Company = capString(r.Company, maxCompanyLen)
	r.Description = capString(r.Description, maxDescriptionLen)
	if len(r.ApplyURL) > maxURLLen {
		r.ApplyURL = r.ApplyURL[:maxURLLen]
	}
}

func capString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// back the cut up to a rune boundary so the cap never emits invalid UTF-8
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// Dedup keeps the first occurrence of each fingerprint, preserving input
// order, and reports how many records were dropped.
func Dedup(records []model.JobRecord) ([]model.JobRecord, int) {
	seen := make(map[string]struct{}, len(records))
	kept := records[:0:0]
	for i := range records {
		Truncate(&records[i])
		fp := model.Fingerprint(&records[i])
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		kept = append(kept, records[i])
	}
	return kept, len(records) - len(kept)
}
