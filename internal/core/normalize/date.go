// Package normalize converts the free-text relative dates portals attach to
// cards ("2 days ago", "Just posted") into absolute timestamps so the
// freshness filter has something to compare.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	hoursAgoRe  = regexp.MustCompile(`(\d+)\s*(?:hour|hr)s?\s*(?:ago)?`)
	daysAgoRe   = regexp.MustCompile(`(\d+)\s*days?\s*(?:ago)?`)
	weeksAgoRe  = regexp.MustCompile(`(\d+)\s*(?:week|wk)s?\s*(?:ago)?`)
	monthPlusRe = regexp.MustCompile(`(\d+)\+\s*days?`)
	minutesRe   = regexp.MustCompile(`(\d+)\s*(?:minute|min)s?\s*(?:ago)?`)
)

// PostedAt resolves a relative date string against now. Patterns are tried in
// a fixed order; the first match wins. Returns false when nothing matches so
// the caller can apply the source's default recency assumption.
func PostedAt(text string, now time.Time) (time.Time, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return time.Time{}, false
	}

	switch {
	case strings.Contains(t, "just posted"),
		strings.Contains(t, "just now"),
		strings.Contains(t, "few hours"),
		strings.Contains(t, "today"),
		strings.Contains(t, "posted today"):
		return now, true
	case strings.Contains(t, "yesterday"):
		return now.Add(-24 * time.Hour), true
	}

	if m := minutesRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(-time.Duration(n) * time.Minute), true
	}
	if m := hoursAgoRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(-time.Duration(n) * time.Hour), true
	}
	// "30+ days ago" must win over the plain days pattern
	if m := monthPlusRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, -(n + 1)), true
	}
	if m := daysAgoRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, -n), true
	}
	if m := weeksAgoRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, -7*n), true
	}

	return time.Time{}, false
}

// AssumeRecent returns the timestamp used when a card's date text is missing
// or unparseable: the source's default recency assumption, in days.
func AssumeRecent(now time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	return now.AddDate(0, 0, -days)
}
