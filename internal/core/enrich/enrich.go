// Package enrich infers salary, location, deadline, and experience fields
// from card text. It only fills fields the adapter left empty; adapter
// supplied values are never overwritten.
package enrich

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobradar/internal/model"
)

const maxExperienceYears = 20

var (
	salaryRangeRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:to|-|–)\s*(\d+(?:\.\d+)?)\s*(lpa|lakhs?|thousand|k|crores?|cr)\b`)
	salarySingleRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(lpa|lakhs?|thousand|k|crores?|cr)\b`)
	salaryAnchorRe = regexp.MustCompile(`(?i)(?:salary|ctc|package|stipend|compensation)\s*(?:of|:|-)?\s*(?:₹|rs\.?|inr)?\s*(\d+(?:,\d{3})*(?:\.\d+)?)`)

	locationAnchorRe = regexp.MustCompile(`(?i)location\s*[:\-]\s*([A-Z][A-Za-z .,/]{2,48})`)

	deadlineAnchorRe = regexp.MustCompile(`(?i)(?:deadline|last date|apply by|apply before|closes on)\s*[:\-]?\s*([A-Za-z0-9 ,/\-]{4,24})`)

	experienceRe = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*(?:-\s*\d+\s*)?(?:years?|yrs?)`)
)

var remoteKeywords = []string{"remote", "work from home", "wfh", "hybrid", "anywhere"}

var knownCities = []string{
	"bangalore", "bengaluru", "mumbai", "new delhi", "delhi", "hyderabad",
	"chennai", "pune", "kolkata", "noida", "gurgaon", "gurugram",
	"ahmedabad", "jaipur", "chandigarh", "kochi", "indore", "coimbatore",
}

var deadlineLayouts = []string{
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
}

// entry-level shortcut phrases: any of these means zero years required
var entryLevelKeywords = []string{"fresher", "entry level", "entry-level", "no experience", "0 years", "0-1 year"}

// Enrich fills the empty fields of rec from its own text. now anchors
// deadline-year disambiguation.
func Enrich(rec *model.JobRecord, now time.Time) {
	text := rec.Title + " " + rec.Description

	if rec.Salary == "" {
		rec.Salary = Salary(text)
	} else if norm := Salary(rec.Salary); norm != "" {
		// adapter-supplied free text still gets unit normalization
		rec.Salary = norm
	}
	if rec.Location == "" {
		rec.Location = Location(text)
	}
	if rec.Deadline.IsZero() {
		rec.Deadline = Deadline(text, now)
	}
	if rec.ExperienceYears == 0 {
		rec.ExperienceYears = Experience(text)
	}
}

// Salary extracts and normalizes a salary mention to the lakhs-per-annum
// scale, formatted "%.1f - %.1f LPA" for ranges or "%.1f LPA" for single
// values. Returns "" when nothing matches.
func Salary(text string) string {
	if m := salaryRangeRe.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		lo, hi = toLPA(lo, m[3]), toLPA(hi, m[3])
		return fmt.Sprintf("%.1f - %.1f LPA", lo, hi)
	}
	if m := salarySingleRe.FindStringSubmatch(text); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return fmt.Sprintf("%.1f LPA", toLPA(v, m[2]))
	}
	if m := salaryAnchorRe.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v == 0 {
			return ""
		}
		// bare amounts this large are monthly rupee figures on the
		// thousand scale
		if v >= 1000 {
			v /= 100
		}
		return fmt.Sprintf("%.1f LPA", v)
	}
	return ""
}

// toLPA converts value+unit to lakhs per annum.
func toLPA(v float64, unit string) float64 {
	switch strings.ToLower(unit) {
	case "k", "thousand":
		return v / 100
	case "cr", "crore", "crores":
		return v * 100
	default: // lpa, lakh, lakhs
		return v
	}
}

// Location checks remote keywords first (highest priority), then the known
// city list, then a "location:"-anchored phrase.
func Location(text string) string {
	low := strings.ToLower(text)
	for _, kw := range remoteKeywords {
		if strings.Contains(low, kw) {
			return "Remote"
		}
	}
	for _, city := range knownCities {
		if idx := strings.Index(low, city); idx >= 0 {
			return text[idx : idx+len(city)]
		}
	}
	if m := locationAnchorRe.FindStringSubmatch(text); m != nil {
		return strings.TrimRight(strings.TrimSpace(m[1]), ".,")
	}
	return ""
}

// Deadline finds an anchored date mention and tries each layout in order.
// Year-less dates are anchored to now's year.
func Deadline(text string, now time.Time) time.Time {
	m := deadlineAnchorRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}
	}
	candidate := strings.TrimSpace(m[1])
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t
		}
		if t, err := time.Parse(strings.ReplaceAll(layout, " 2006", ""), candidate); err == nil {
			return t.AddDate(now.Year(), 0, 0)
		}
	}
	return time.Time{}
}

// Experience returns required years: the entry-level shortcut wins, otherwise
// the first integer of a duration pattern, capped at 20.
func Experience(text string) int {
	low := strings.ToLower(text)
	for _, kw := range entryLevelKeywords {
		if strings.Contains(low, kw) {
			return 0
		}
	}
	if m := experienceRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > maxExperienceYears {
			n = maxExperienceYears
		}
		return n
	}
	return 0
}
