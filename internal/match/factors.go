package match

import (
	"strings"

	"jobradar-engine/internal/domain"
)

// Factor weights. Each factor is normalized to [0,1] before weighting;
// the five weighted contributions sum to at most 100.
const (
	weightRequiredSkills  = 30.0
	weightPreferredSkills = 10.0
	weightExperience      = 25.0
	weightLocation        = 15.0
	weightKeywords        = 10.0
	weightSalary          = 10.0
)

// skillFactor returns the weighted skill contribution and the matched skill
// names. A posting with zero required skills contributes nothing from the
// required term; absence of a requirement is not automatic satisfaction.
func skillFactor(candidateSkills []string, p domain.Posting) (float64, []string) {
	have := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var points float64
	var matched []string

	if len(p.RequiredSkills) > 0 {
		hit := 0
		for _, s := range p.RequiredSkills {
			if have[strings.ToLower(strings.TrimSpace(s))] {
				hit++
				matched = append(matched, s)
			}
		}
		points += float64(hit) / float64(len(p.RequiredSkills)) * weightRequiredSkills
	}

	if len(p.PreferredSkills) > 0 {
		hit := 0
		for _, s := range p.PreferredSkills {
			if have[strings.ToLower(strings.TrimSpace(s))] {
				hit++
				matched = append(matched, s)
			}
		}
		points += float64(hit) / float64(len(p.PreferredSkills)) * weightPreferredSkills
	}

	return points, matched
}

// experienceFit maps candidate tenure (years) against the posting's level
// band. Unknown level or no history scores a neutral 0.5.
func experienceFit(tenureYears float64, level string, hasHistory bool) float64 {
	if !hasHistory || level == domain.LevelUnknown || level == "" {
		return 0.5
	}

	switch level {
	case domain.LevelEntry:
		switch {
		case tenureYears <= 2:
			return 1.0
		case tenureYears <= 5:
			return 0.5
		default:
			return 0.2
		}
	case domain.LevelMid:
		switch {
		case tenureYears >= 2 && tenureYears <= 7:
			return 1.0
		case tenureYears < 2:
			return 0.5
		default:
			return 0.7
		}
	case domain.LevelSenior:
		switch {
		case tenureYears >= 5:
			return 1.0
		case tenureYears >= 3:
			return 0.6
		default:
			return 0.2
		}
	case domain.LevelExecutive:
		switch {
		case tenureYears >= 8:
			return 1.0
		case tenureYears >= 5:
			return 0.6
		default:
			return 0.2
		}
	}
	return 0.5
}

// locationFit scores remote and unspecified-location postings 1.0 and
// everything else 0.7. A real candidate location preference model would
// replace the 0.7 flat score.
func locationFit(p domain.Posting) float64 {
	if p.LocationType == domain.LocationRemote || p.Location == "" {
		return 1.0
	}
	return 0.7
}

// keywordOverlap scores the posting keyword set covered by the candidate's
// vocabulary. Empty posting keyword set scores 0.
func keywordOverlap(p domain.Posting, candidate map[string]bool) float64 {
	postingKW := tokenize(p.Title + " " + p.Description)
	if len(postingKW) == 0 {
		return 0
	}
	return float64(overlapBySubstring(postingKW, candidate)) / float64(len(postingKW))
}

// salaryFit is a neutral 0.5 until candidate salary expectations are
// modeled.
func salaryFit(_ domain.Posting) float64 {
	return 0.5
}

// candidateVocabulary concatenates work-history titles/descriptions,
// skills, and education into one keyword set, built once per request.
func candidateVocabulary(p domain.Profile) map[string]bool {
	var b strings.Builder
	for _, w := range p.WorkHistory {
		b.WriteString(w.Title)
		b.WriteString(" ")
		b.WriteString(w.Description)
		b.WriteString(" ")
	}
	for _, s := range p.Skills {
		b.WriteString(s)
		b.WriteString(" ")
	}
	for _, e := range p.Education {
		b.WriteString(e.Degree)
		b.WriteString(" ")
		b.WriteString(e.Field)
		b.WriteString(" ")
	}
	return tokenize(b.String())
}
