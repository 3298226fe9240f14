package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobradar-engine/internal/domain"
)

func TestTokenize(t *testing.T) {
	kw := tokenize("Senior C++ / C# engineer using Node.js and Go.")
	assert.True(t, kw["c++"])
	assert.True(t, kw["c#"])
	assert.True(t, kw["node.js"])
	assert.True(t, kw["senior"])
	assert.True(t, kw["engineer"])
	assert.False(t, kw["go"], "two-letter words are dropped")
	assert.False(t, kw["and"], "stop words are dropped")
	assert.False(t, kw["using"], "stop words are dropped")
}

func TestTokenize_TrailingDot(t *testing.T) {
	kw := tokenize("We ship daily.")
	assert.True(t, kw["daily"])
	assert.False(t, kw["daily."])
}

func TestSkillFactor(t *testing.T) {
	p := domain.Posting{
		RequiredSkills:  []string{"Go", "SQL"},
		PreferredSkills: []string{"Kubernetes", "Terraform"},
	}

	points, matched := skillFactor([]string{"go", "kubernetes"}, p)
	assert.InDelta(t, 15+5, points, 1e-9) // half of each bucket
	assert.Equal(t, []string{"Go", "Kubernetes"}, matched)

	points, matched = skillFactor(nil, p)
	assert.Zero(t, points)
	assert.Empty(t, matched)
}

func TestSkillFactor_NoRequirementsIsNotFreePoints(t *testing.T) {
	points, matched := skillFactor([]string{"Go"}, domain.Posting{})
	assert.Zero(t, points)
	assert.Empty(t, matched)
}

func TestExperienceFit(t *testing.T) {
	cases := []struct {
		name    string
		tenure  float64
		level   string
		history bool
		want    float64
	}{
		{"no history is neutral", 0, domain.LevelSenior, false, 0.5},
		{"unknown level is neutral", 10, domain.LevelUnknown, true, 0.5},
		{"entry fresh", 1, domain.LevelEntry, true, 1.0},
		{"entry overqualified", 4, domain.LevelEntry, true, 0.5},
		{"entry far overqualified", 9, domain.LevelEntry, true, 0.2},
		{"mid in band", 4, domain.LevelMid, true, 1.0},
		{"mid underqualified", 1, domain.LevelMid, true, 0.5},
		{"mid overqualified", 10, domain.LevelMid, true, 0.7},
		{"senior qualified", 6, domain.LevelSenior, true, 1.0},
		{"senior close", 4, domain.LevelSenior, true, 0.6},
		{"senior underqualified", 1, domain.LevelSenior, true, 0.2},
		{"executive qualified", 12, domain.LevelExecutive, true, 1.0},
		{"executive close", 6, domain.LevelExecutive, true, 0.6},
		{"executive underqualified", 2, domain.LevelExecutive, true, 0.2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, experienceFit(tc.tenure, tc.level, tc.history), 1e-9)
		})
	}
}

func TestLocationFit(t *testing.T) {
	assert.InDelta(t, 1.0, locationFit(domain.Posting{LocationType: domain.LocationRemote, Location: "anywhere"}), 1e-9)
	assert.InDelta(t, 1.0, locationFit(domain.Posting{LocationType: domain.LocationUnknown}), 1e-9)
	assert.InDelta(t, 0.7, locationFit(domain.Posting{LocationType: domain.LocationOnsite, Location: "Austin"}), 1e-9)
}

func TestKeywordOverlap_Substring(t *testing.T) {
	p := domain.Posting{Title: "PostgreSQL Engineer", Description: "Tune queries"}
	vocab := tokenize("sql tuning")

	// posting keywords: postgresql, engineer, tune, queries.
	// "sql" is contained in "postgresql" and "tune" in "tuning": 2 of 4.
	got := keywordOverlap(p, vocab)
	assert.InDelta(t, 0.5, got, 1e-9)
}

func TestKeywordOverlap_Empty(t *testing.T) {
	assert.Zero(t, keywordOverlap(domain.Posting{Title: "Go", Description: "at it"}, tokenize("anything")))
}
