package normalize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/store"
)

type Outcome int

const (
	// OutcomeCreated: no row existed for the dedup key; one was inserted.
	OutcomeCreated Outcome = iota
	// OutcomeUpdated: a row existed and at least one significant field
	// changed; only the changed columns were written.
	OutcomeUpdated
	// OutcomeUnchanged: a row existed and nothing significant differs;
	// no write was performed.
	OutcomeUnchanged
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Apply reconciles a freshly normalized posting against stored state.
// Postings are never deleted here; retirement happens through the staleness
// cleanup path.
func Apply(ctx context.Context, st *store.Store, p domain.Posting, now time.Time) (Outcome, error) {
	existing, err := st.FindPosting(ctx, p.Source, p.SourceID)
	if errors.Is(err, store.ErrNotFound) {
		p.Active = true
		p.LastSynced = now
		if err := st.InsertPosting(ctx, &p); err != nil {
			return OutcomeUnchanged, fmt.Errorf("apply %s/%s: %w", p.Source, p.SourceID, err)
		}
		return OutcomeCreated, nil
	}
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("apply %s/%s: %w", p.Source, p.SourceID, err)
	}

	changes := significantChanges(existing, p)
	if len(changes) == 0 {
		return OutcomeUnchanged, nil
	}

	changes["last_synced"] = now
	if err := st.UpdatePosting(ctx, existing.ID, changes); err != nil {
		return OutcomeUnchanged, fmt.Errorf("apply %s/%s: %w", p.Source, p.SourceID, err)
	}
	return OutcomeUpdated, nil
}

// significantChanges diffs the fields whose change warrants a write: title,
// company, description, location, salary bounds, application URL, and the
// active flag (a posting the source returns again is active by definition).
func significantChanges(old, next domain.Posting) map[string]any {
	changes := map[string]any{}

	if next.Title != old.Title {
		changes["title"] = next.Title
	}
	if next.Company != old.Company {
		changes["company"] = next.Company
	}
	if next.Description != old.Description {
		changes["description"] = next.Description
	}
	if next.Location != old.Location {
		changes["location"] = next.Location
	}
	if !floatPtrEq(next.SalaryMin, old.SalaryMin) {
		changes["salary_min"] = floatPtrVal(next.SalaryMin)
	}
	if !floatPtrEq(next.SalaryMax, old.SalaryMax) {
		changes["salary_max"] = floatPtrVal(next.SalaryMax)
	}
	if next.ApplicationURL != old.ApplicationURL {
		changes["application_url"] = next.ApplicationURL
	}
	if !old.Active {
		changes["active"] = true
	}
	return changes
}

func floatPtrEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func floatPtrVal(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
