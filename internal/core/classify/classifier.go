// Package classify distinguishes internship from full-time postings with
// weighted keyword scoring over title and description.
package classify

import (
	"regexp"
	"strings"

	"jobradar/internal/model"
)

const (
	// decision threshold for each score
	threshold = 0.4
	// a title hit counts for more than a description-only hit
	titleBoost = 1.5
	// fixed bonus for each strong internship signal pattern
	signalBonus = 0.15
)

var internshipWeights = map[string]float64{
	"internship":          1.0,
	"intern":              0.9,
	"summer intern":       0.8,
	"winter intern":       0.7,
	"trainee":             0.7,
	"apprentice":          0.6,
	"stipend":             0.6,
	"industrial training": 0.5,
}

var fullTimeWeights = map[string]float64{
	"full-time":     1.0,
	"full time":     0.9,
	"permanent":     0.8,
	"ctc":           0.6,
	"lpa":           0.6,
	"experience":    0.5,
	"per annum":     0.5,
	"notice period": 0.4,
}

// negative indicators halve the corresponding score when present anywhere
var internshipNegative = []string{"senior", "director", "manager", "principal", "architect", "lead "}
var fullTimeNegative = []string{"contract", "part-time", "part time", "freelance"}

var (
	durationInternRe = regexp.MustCompile(`\d+\s*-?\s*(?:month|week)s?\b.*(?:intern|traineeship)`)
	stipendRe        = regexp.MustCompile(`(?:stipend|allowance)\s*(?:of|:)?\s*(?:₹|rs\.?|inr)?\s*\d*`)
)

var internshipWeightSum, fullTimeWeightSum float64

func init() {
	for _, w := range internshipWeights {
		internshipWeightSum += w
	}
	for _, w := range fullTimeWeights {
		fullTimeWeightSum += w
	}
}

// Result carries both scores so callers can alert on low-confidence records.
type Result struct {
	Type            model.JobType
	InternshipScore float64
	FullTimeScore   float64
	Confidence      float64
}

// Classify scores title and description against both keyword maps and applies
// the threshold decision table.
func Classify(title, description string) Result {
	lowTitle := strings.ToLower(title)
	lowDesc := strings.ToLower(description)
	combined := lowTitle + " " + lowDesc

	intern := score(lowTitle, lowDesc, internshipWeights, internshipWeightSum)
	full := score(lowTitle, lowDesc, fullTimeWeights, fullTimeWeightSum)

	for _, neg := range internshipNegative {
		if strings.Contains(combined, neg) {
			intern /= 2
			break
		}
	}
	for _, neg := range fullTimeNegative {
		if strings.Contains(combined, neg) {
			full /= 2
			break
		}
	}

	// strong internship signals: an explicit duration near "intern", and a
	// stipend/allowance mention
	if durationInternRe.MatchString(combined) {
		intern += signalBonus
	}
	if stipendRe.MatchString(combined) {
		intern += signalBonus
	}

	intern = clamp01(intern)
	full = clamp01(full)

	res := Result{
		InternshipScore: intern,
		FullTimeScore:   full,
		Confidence:      max64(intern, full),
	}

	switch {
	case intern >= threshold && full >= threshold:
		res.Type = model.TypeBoth
	case intern >= threshold:
		res.Type = model.TypeInternship
	case full >= threshold:
		res.Type = model.TypeFullTime
	default:
		// title-only heuristic when neither score is decisive
		if strings.Contains(lowTitle, "intern") || strings.Contains(lowTitle, "trainee") {
			res.Type = model.TypeInternship
		} else {
			res.Type = model.TypeFullTime
		}
	}
	return res
}

// score sums keyword weights: a title match contributes weight*titleBoost, a
// description-only match contributes the plain weight. Normalized by the sum
// of all weights in the map.
func score(title, desc string, weights map[string]float64, sum float64) float64 {
	var total float64
	for kw, w := range weights {
		switch {
		case strings.Contains(title, kw):
			total += w * titleBoost
		case strings.Contains(desc, kw):
			total += w
		}
	}
	return clamp01(total / sum)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
