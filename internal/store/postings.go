package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobradar-engine/internal/domain"
)

const postingCols = `id, title, company, company_logo_url, description, requirements,
location, location_type, salary_min, salary_max, salary_currency,
employment_type, experience_level, application_url, source, source_id,
source_url, posted_at, last_synced, active, required_skills, preferred_skills`

// postingColumns whitelists the columns UpdatePosting may touch.
var postingColumns = map[string]bool{
	"title":            true,
	"company":          true,
	"company_logo_url": true,
	"description":      true,
	"requirements":     true,
	"location":         true,
	"location_type":    true,
	"salary_min":       true,
	"salary_max":       true,
	"salary_currency":  true,
	"employment_type":  true,
	"experience_level": true,
	"application_url":  true,
	"source_url":       true,
	"posted_at":        true,
	"last_synced":      true,
	"active":           true,
	"required_skills":  true,
	"preferred_skills": true,
}

// FindPosting looks up a posting by its dedup key.
func (s *Store) FindPosting(ctx context.Context, source, sourceID string) (domain.Posting, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postingCols+` FROM postings WHERE source = ? AND source_id = ? LIMIT 1;`,
		source, sourceID,
	)
	p, err := scanPosting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Posting{}, ErrNotFound
	}
	return p, err
}

// InsertPosting creates a new canonical posting row and fills in its ID.
func (s *Store) InsertPosting(ctx context.Context, p *domain.Posting) error {
	reqB, _ := json.Marshal(nonNil(p.RequiredSkills))
	prefB, _ := json.Marshal(nonNil(p.PreferredSkills))

	res, err := s.db.ExecContext(ctx, `
INSERT INTO postings (title, company, company_logo_url, description, requirements,
  location, location_type, salary_min, salary_max, salary_currency,
  employment_type, experience_level, application_url, source, source_id,
  source_url, posted_at, last_synced, active, required_skills, preferred_skills)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		p.Title, p.Company, p.CompanyLogoURL, p.Description, p.Requirements,
		p.Location, p.LocationType, p.SalaryMin, p.SalaryMax, p.SalaryCurrency,
		p.EmploymentType, p.ExperienceLevel, p.ApplicationURL, p.Source, p.SourceID,
		p.SourceURL, timePtrText(p.PostedAt), p.LastSynced.UTC().Format(time.RFC3339),
		boolInt(p.Active), string(reqB), string(prefB),
	)
	if err != nil {
		return fmt.Errorf("insert posting: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	return nil
}

// UpdatePosting writes only the given columns for one posting. Keys must be
// column names from the whitelist; time values are stored as RFC3339 text.
func (s *Store) UpdatePosting(ctx context.Context, id int64, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}

	sets := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+1)
	for col, val := range changes {
		if !postingColumns[col] {
			return fmt.Errorf("update posting: unknown column %q", col)
		}
		switch v := val.(type) {
		case time.Time:
			val = v.UTC().Format(time.RFC3339)
		case bool:
			val = boolInt(v)
		}
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE postings SET `+strings.Join(sets, ", ")+` WHERE id = ?;`, args...)
	if err != nil {
		return fmt.Errorf("update posting: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkInactiveBefore flips active=false on every still-active posting whose
// last_synced is older than the cutoff. Returns the number of rows affected.
func (s *Store) MarkInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE postings SET active = 0 WHERE active = 1 AND last_synced < ?;`,
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("mark inactive: %w", err)
	}
	return res.RowsAffected()
}

// ListActivePostings returns active postings, most recently synced first.
// limit <= 0 means no limit.
func (s *Store) ListActivePostings(ctx context.Context, limit int) ([]domain.Posting, error) {
	q := `SELECT ` + postingCols + ` FROM postings WHERE active = 1 ORDER BY last_synced DESC, id ASC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q+`;`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountPostings returns the total number of posting rows, active or not.
func (s *Store) CountPostings(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM postings;`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(r rowScanner) (domain.Posting, error) {
	var (
		p          domain.Posting
		salaryMin  sql.NullFloat64
		salaryMax  sql.NullFloat64
		postedAt   sql.NullString
		lastSynced string
		active     int
		reqJSON    string
		prefJSON   string
	)
	err := r.Scan(&p.ID, &p.Title, &p.Company, &p.CompanyLogoURL, &p.Description,
		&p.Requirements, &p.Location, &p.LocationType, &salaryMin, &salaryMax,
		&p.SalaryCurrency, &p.EmploymentType, &p.ExperienceLevel, &p.ApplicationURL,
		&p.Source, &p.SourceID, &p.SourceURL, &postedAt, &lastSynced, &active,
		&reqJSON, &prefJSON)
	if err != nil {
		return p, err
	}

	if salaryMin.Valid {
		v := salaryMin.Float64
		p.SalaryMin = &v
	}
	if salaryMax.Valid {
		v := salaryMax.Float64
		p.SalaryMax = &v
	}
	if postedAt.Valid && postedAt.String != "" {
		if t, err := time.Parse(time.RFC3339, postedAt.String); err == nil {
			p.PostedAt = &t
		}
	}
	p.LastSynced, _ = time.Parse(time.RFC3339, lastSynced)
	p.Active = active != 0
	_ = json.Unmarshal([]byte(reqJSON), &p.RequiredSkills)
	_ = json.Unmarshal([]byte(prefJSON), &p.PreferredSkills)
	return p, nil
}

func timePtrText(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
