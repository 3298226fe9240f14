// Package match scores active postings against a candidate profile and
// returns a ranked, explained result list.
package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/store"
)

const maxShownSkills = 3

type Engine struct {
	st  *store.Store
	log *zap.Logger
	now func() time.Time
}

func New(st *store.Store, log *zap.Logger) *Engine {
	return &Engine{st: st, log: log, now: time.Now}
}

// FindMatches scores every active posting for the user's latest profile and
// returns at most limit results, highest score first. Ties keep retrieval
// order (stable sort). A user without a profile gets an empty list, not an
// error.
func (e *Engine) FindMatches(ctx context.Context, userID string, limit int) ([]domain.MatchResult, error) {
	profile, err := e.st.LatestProfile(ctx, userID)
	if errors.Is(err, store.ErrProfileNotFound) {
		return []domain.MatchResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	postings, err := e.st.ListActivePostings(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}

	now := e.now()
	tenure := profile.TenureYears(now)
	hasHistory := len(profile.WorkHistory) > 0
	vocab := candidateVocabulary(profile)

	results := make([]domain.MatchResult, 0, len(postings))
	for _, p := range postings {
		results = append(results, e.scorePosting(profile, p, tenure, hasHistory, vocab))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	e.log.Debug("matches computed",
		zap.String("user", userID),
		zap.Int("postings", len(postings)),
		zap.Int("returned", len(results)))
	return results, nil
}

func (e *Engine) scorePosting(profile domain.Profile, p domain.Posting, tenure float64, hasHistory bool, vocab map[string]bool) domain.MatchResult {
	skillPoints, matched := skillFactor(profile.Skills, p)

	score := skillPoints +
		experienceFit(tenure, p.ExperienceLevel, hasHistory)*weightExperience +
		locationFit(p)*weightLocation +
		keywordOverlap(p, vocab)*weightKeywords +
		salaryFit(p)*weightSalary

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return domain.MatchResult{
		Posting:       p,
		Score:         score,
		MatchedSkills: matched,
		Reasons:       reasons(p, matched),
	}
}

// reasons builds the human-readable explanation list. It is derived from
// the posting and matched skills directly, not from the score.
func reasons(p domain.Posting, matched []string) []string {
	var out []string

	if len(matched) > 0 {
		shown := matched
		extra := 0
		if len(shown) > maxShownSkills {
			extra = len(shown) - maxShownSkills
			shown = shown[:maxShownSkills]
		}
		r := "Matches your skills: " + strings.Join(shown, ", ")
		if extra > 0 {
			r += fmt.Sprintf(" +%d more", extra)
		}
		out = append(out, r)
	}

	if p.ExperienceLevel != "" && p.ExperienceLevel != domain.LevelUnknown {
		out = append(out, p.ExperienceLevel+"-level role")
	}

	if p.LocationType == domain.LocationRemote {
		out = append(out, "remote work")
	}

	return out
}
