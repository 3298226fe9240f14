package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobradar-engine/internal/domain"
)

// LatestProfile returns the most recently updated candidate profile for a
// user. Returns ErrProfileNotFound when the user has none; the matching
// engine treats that as an empty result, not an error.
func (s *Store) LatestProfile(ctx context.Context, userID string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT user_id, skills, work_history, education, desired_location,
       remote_preferred, updated_at
FROM profiles
WHERE user_id = ?
ORDER BY updated_at DESC, id DESC
LIMIT 1;`, userID)

	var (
		p          domain.Profile
		skillsJSON string
		workJSON   string
		eduJSON    string
		remote     int
		updatedAt  string
	)
	err := row.Scan(&p.UserID, &skillsJSON, &workJSON, &eduJSON,
		&p.DesiredLoc, &remote, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}

	_ = json.Unmarshal([]byte(skillsJSON), &p.Skills)
	_ = json.Unmarshal([]byte(workJSON), &p.WorkHistory)
	_ = json.Unmarshal([]byte(eduJSON), &p.Education)
	p.RemotePref = remote != 0
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

// SaveProfile writes a profile snapshot. The profile store belongs to the
// wider application; this exists for seeding and tests.
func (s *Store) SaveProfile(ctx context.Context, p domain.Profile) error {
	skillsB, _ := json.Marshal(nonNil(p.Skills))
	workB, _ := json.Marshal(p.WorkHistory)
	eduB, _ := json.Marshal(p.Education)

	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO profiles(user_id, skills, work_history, education,
  desired_location, remote_preferred, updated_at)
VALUES(?,?,?,?,?,?,?);`,
		p.UserID, string(skillsB), string(workB), string(eduB),
		p.DesiredLoc, boolInt(p.RemotePref), p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
