package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jobradar-engine/internal/domain"
)

// UpsertSource creates or refreshes a JobSource row. last_sync is only
// written through MarkSourceSynced, so a failed cycle never touches it.
func (s *Store) UpsertSource(ctx context.Context, src domain.JobSource) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sources(name, display_name, base_url)
VALUES(?,?,?)
ON CONFLICT(name) DO UPDATE SET
  display_name = excluded.display_name,
  base_url = excluded.base_url;`,
		src.Name, src.DisplayName, src.BaseURL,
	)
	if err != nil {
		return fmt.Errorf("upsert source: %w", err)
	}
	return nil
}

// MarkSourceSynced records a successful sync for the named source.
func (s *Store) MarkSourceSynced(ctx context.Context, name string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sources SET last_sync = ? WHERE name = ?;`,
		at.UTC().Format(time.RFC3339), name,
	)
	if err != nil {
		return fmt.Errorf("mark source synced: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSources returns all known sources ordered by name.
func (s *Store) ListSources(ctx context.Context) ([]domain.JobSource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, display_name, base_url, last_sync FROM sources ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.JobSource
	for rows.Next() {
		var (
			src      domain.JobSource
			lastSync sql.NullString
		)
		if err := rows.Scan(&src.Name, &src.DisplayName, &src.BaseURL, &lastSync); err != nil {
			return nil, err
		}
		if lastSync.Valid && lastSync.String != "" {
			if t, err := time.Parse(time.RFC3339, lastSync.String); err == nil {
				src.LastSync = &t
			}
		}
		out = append(out, src)
	}
	return out, rows.Err()
}
