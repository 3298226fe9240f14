// Package normalize turns heterogeneous source payloads into canonical
// postings and decides create vs. update vs. no-op against stored state.
package normalize

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"jobradar-engine/internal/domain"
)

// Alternate field names tolerated per attribute. Sources disagree wildly on
// naming; first present, non-empty key wins.
var (
	titleKeys       = []string{"title", "name", "position", "job_title", "text"}
	companyKeys     = []string{"company", "company_name", "employer", "organization"}
	descriptionKeys = []string{"description", "summary", "snippet", "body", "content"}
	requirementKeys = []string{"requirements", "qualifications"}
	locationKeys    = []string{"location", "location_name", "city", "candidate_required_location"}
	salaryMinKeys   = []string{"salary_min", "min_salary", "salary_from"}
	salaryMaxKeys   = []string{"salary_max", "max_salary", "salary_to"}
	currencyKeys    = []string{"salary_currency", "currency"}
	employmentKeys  = []string{"employment_type", "job_type", "contract_type", "contract_time"}
	applyURLKeys    = []string{"application_url", "apply_url", "redirect_url", "hosted_url", "url"}
	sourceURLKeys   = []string{"source_url", "redirect_url", "url", "hosted_url"}
	idKeys          = []string{"id", "job_id", "external_id", "uuid", "slug"}
	postedKeys      = []string{"posted_at", "created", "created_at", "publication_date", "date_posted"}
	logoKeys        = []string{"company_logo", "company_logo_url", "logo"}
	skillKeys       = []string{"skills", "tags", "keywords"}
	preferredKeys   = []string{"preferred_skills", "nice_to_have"}
)

// Experience-level keyword families, checked in this order; the first family
// with any hit wins. The order is a fixed policy: a "Senior Engineering
// Manager, New Grad Program" posting resolves to entry, not senior.
var levelFamilies = []struct {
	level    string
	keywords []string
}{
	{domain.LevelEntry, []string{"entry level", "entry-level", "junior", "graduate", "new grad", "intern", "trainee"}},
	{domain.LevelMid, []string{"mid level", "mid-level", "intermediate", "associate"}},
	{domain.LevelSenior, []string{"senior", "sr.", "sr ", "staff", "lead "}},
	{domain.LevelExecutive, []string{"executive", "director", "vp ", "vice president", "chief", "head of", "principal"}},
}

// Normalize maps one raw payload item from the named source into a canonical
// posting. The second return is false when the item is unusable (missing
// title, company, or description after cleaning); such items are dropped,
// not errored.
func Normalize(raw map[string]any, source string) (domain.Posting, bool) {
	title := CleanText(firstString(raw, titleKeys))
	company := CleanText(firstString(raw, companyKeys))
	description := CleanText(StripHTML(firstString(raw, descriptionKeys)))
	if title == "" || company == "" || description == "" {
		return domain.Posting{}, false
	}

	sourceID := firstString(raw, idKeys)
	if sourceID == "" {
		return domain.Posting{}, false
	}

	location := CleanText(firstString(raw, locationKeys))
	requirements := CleanText(StripHTML(firstString(raw, requirementKeys)))
	if requirements == "" {
		requirements = extractRequirements(description)
	}

	p := domain.Posting{
		Title:           title,
		Company:         company,
		CompanyLogoURL:  firstString(raw, logoKeys),
		Description:     description,
		Requirements:    requirements,
		Location:        location,
		LocationType:    inferLocationType(description, location),
		SalaryMin:       firstFloat(raw, salaryMinKeys),
		SalaryMax:       firstFloat(raw, salaryMaxKeys),
		SalaryCurrency:  strings.ToUpper(CleanText(firstString(raw, currencyKeys))),
		EmploymentType:  inferEmploymentType(firstString(raw, employmentKeys)),
		ExperienceLevel: inferExperienceLevel(title, description),
		ApplicationURL:  firstString(raw, applyURLKeys),
		Source:          source,
		SourceID:        sourceID,
		SourceURL:       firstString(raw, sourceURLKeys),
		PostedAt:        firstTime(raw, postedKeys),
		RequiredSkills:  stringList(raw, skillKeys),
		PreferredSkills: stringList(raw, preferredKeys),
	}
	return p, true
}

// CleanText collapses whitespace runs to single spaces and trims the ends.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func inferLocationType(description, location string) string {
	blob := strings.ToLower(description + " " + location)
	switch {
	case strings.Contains(blob, "remote"):
		return domain.LocationRemote
	case strings.Contains(strings.ToLower(description), "hybrid"):
		return domain.LocationHybrid
	case location != "":
		return domain.LocationOnsite
	default:
		return domain.LocationUnknown
	}
}

func inferEmploymentType(raw string) string {
	t := strings.ToLower(CleanText(raw))
	switch {
	case t == "":
		return domain.EmploymentUnknown
	case strings.Contains(t, "full") || strings.Contains(t, "permanent"):
		return domain.EmploymentFullTime
	case strings.Contains(t, "part"):
		return domain.EmploymentPartTime
	case strings.Contains(t, "contract") || strings.Contains(t, "freelance") || strings.Contains(t, "temporary"):
		return domain.EmploymentContract
	case strings.Contains(t, "intern"):
		return domain.EmploymentInternship
	default:
		return domain.EmploymentUnknown
	}
}

func inferExperienceLevel(title, description string) string {
	blob := strings.ToLower(title + " " + description)
	for _, fam := range levelFamilies {
		for _, kw := range fam.keywords {
			if strings.Contains(blob, kw) {
				return fam.level
			}
		}
	}
	return domain.LevelUnknown
}

var (
	requirementMarkers    = []string{"requirements", "qualifications"}
	responsibilityMarkers = []string{"responsibilities", "benefits"}
)

// extractRequirements is a best-effort slice of the description between a
// requirements marker and a responsibilities/benefits marker. Returns ""
// when no requirements marker is found.
func extractRequirements(description string) string {
	low, offs := foldOffsets(description)

	markerAt := -1
	markerLen := 0
	for _, m := range requirementMarkers {
		if i := strings.Index(low, m); i >= 0 && (markerAt < 0 || i < markerAt) {
			markerAt = i
			markerLen = len(m)
		}
	}
	if markerAt < 0 {
		return ""
	}
	start := markerAt + markerLen

	restLow := low[start:]
	end := len(restLow)
	for _, m := range responsibilityMarkers {
		if i := strings.Index(restLow, m); i >= 0 && i < end {
			end = i
		}
	}

	out := strings.Trim(description[offs[start]:offs[start+end]], " :;-–")
	return CleanText(out)
}

// foldOffsets lowercases s and maps every byte of the lowered string back to
// the starting offset of its source rune in s. Lowercasing can change rune
// byte lengths ("İ" is two bytes, "i" is one), so lowered indices must not
// slice s directly.
func foldOffsets(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	offs := make([]int, 0, len(s)+1)
	for i, r := range s {
		lr := unicode.ToLower(r)
		b.WriteRune(lr)
		for n := utf8.RuneLen(lr); n > 0; n-- {
			offs = append(offs, i)
		}
	}
	offs = append(offs, len(s))
	return b.String(), offs
}

func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s := anyToString(v); s != "" {
			return s
		}
	}
	return ""
}

// anyToString tolerates the shapes sources actually send: plain strings,
// numbers, and nested objects like {"display_name": "Acme"}.
func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case map[string]any:
		for _, k := range []string{"display_name", "name", "label"} {
			if s, ok := t[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func firstFloat(raw map[string]any, keys []string) *float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			if t > 0 {
				return &t
			}
		case int:
			if t > 0 {
				f := float64(t)
				return &f
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil && f > 0 {
				return &f
			}
		}
	}
	return nil
}

func firstTime(raw map[string]any, keys []string) *time.Time {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
				if ts, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
					return &ts
				}
			}
		case float64:
			// epoch millis (lever-style) or seconds
			if t > 1e12 {
				ts := time.UnixMilli(int64(t)).UTC()
				return &ts
			}
			if t > 1e9 {
				ts := time.Unix(int64(t), 0).UTC()
				return &ts
			}
		}
	}
	return nil
}

func stringList(raw map[string]any, keys []string) []string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		items, ok := v.([]any)
		if !ok {
			continue
		}
		var out []string
		seen := map[string]bool{}
		for _, it := range items {
			s := CleanText(anyToString(it))
			if s == "" || seen[strings.ToLower(s)] {
				continue
			}
			seen[strings.ToLower(s)] = true
			out = append(out, s)
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
