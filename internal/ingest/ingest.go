// Package ingest coordinates fetching from all configured listing sources,
// feeding payloads through the normalizer, and retiring stale postings.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobradar-engine/internal/config"
	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/normalize"
	"jobradar-engine/internal/secrets"
	"jobradar-engine/internal/store"
)

// SourceReport is the per-source outcome of one cycle.
type SourceReport struct {
	Source    string `json:"source"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Dropped   int    `json:"dropped"`
	Err       string `json:"error,omitempty"`
}

// Summary aggregates one full sync cycle across all sources.
type Summary struct {
	SuccessCount int            `json:"successCount"`
	FailureCount int            `json:"failureCount"`
	Created      int            `json:"created"`
	Updated      int            `json:"updated"`
	Unchanged    int            `json:"unchanged"`
	Dropped      int            `json:"dropped"`
	Sources      []SourceReport `json:"sources"`
}

// Coordinator runs sync cycles over a fixed set of fetchers. The set is
// built once at startup from config; sources are descriptors, not types.
type Coordinator struct {
	st        *store.Store
	log       *zap.Logger
	timeout   time.Duration
	fetchers  []Fetcher
	onCreated func(domain.Posting)
}

// New builds a Coordinator from configuration. onCreated, when non-nil, is
// invoked for every newly created posting (the SSE hub hangs off this).
func New(cfg config.Config, st *store.Store, log *zap.Logger, onCreated func(domain.Posting)) *Coordinator {
	limiter := NewHostLimiter(cfg.Sync.RatePerSec, cfg.Sync.RateBurst)

	var fetchers []Fetcher
	for _, src := range cfg.Sources {
		apiKey := ""
		if src.KeyringAccount != "" {
			key, err := secrets.SourceAPIKey(src.KeyringAccount)
			if err != nil {
				log.Warn("source API key unavailable, fetches may 401",
					zap.String("source", src.Name), zap.Error(err))
			}
			apiKey = key
		}
		fetchers = append(fetchers, NewAPISource(src, apiKey, limiter))
	}

	if cfg.Email.Enabled {
		account := secrets.IMAPAccount(cfg.Email.Username, cfg.Email.IMAPHost)
		pw, err := secrets.IMAPPassword(account)
		if err != nil {
			log.Warn("email source enabled but password missing; skipping mailbox source", zap.Error(err))
		} else {
			fetchers = append(fetchers, NewMailSource(cfg.Email, pw))
		}
	}

	return &Coordinator{
		st:        st,
		log:       log,
		timeout:   cfg.SourceTimeout(),
		fetchers:  fetchers,
		onCreated: onCreated,
	}
}

// NewWithFetchers wires an explicit fetcher set; tests and the sync-one path
// use the same machinery as full cycles.
func NewWithFetchers(st *store.Store, log *zap.Logger, timeout time.Duration, fetchers []Fetcher, onCreated func(domain.Posting)) *Coordinator {
	return &Coordinator{st: st, log: log, timeout: timeout, fetchers: fetchers, onCreated: onCreated}
}

// SyncAll runs every source concurrently and waits for all of them to
// settle. One source failing never aborts or delays the others; the result
// is a count pair plus per-source detail.
func (c *Coordinator) SyncAll(ctx context.Context) Summary {
	results := make(chan SourceReport, len(c.fetchers))

	var g errgroup.Group
	for _, f := range c.fetchers {
		g.Go(func() error {
			results <- c.syncSource(ctx, f)
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	var sum Summary
	for rep := range results {
		sum.Sources = append(sum.Sources, rep)
		if rep.Err != "" {
			sum.FailureCount++
			continue
		}
		sum.SuccessCount++
		sum.Created += rep.Created
		sum.Updated += rep.Updated
		sum.Unchanged += rep.Unchanged
		sum.Dropped += rep.Dropped
	}

	c.log.Info("sync cycle settled",
		zap.Int("ok", sum.SuccessCount),
		zap.Int("failed", sum.FailureCount),
		zap.Int("created", sum.Created),
		zap.Int("updated", sum.Updated),
		zap.Int("unchanged", sum.Unchanged),
		zap.Int("dropped", sum.Dropped))
	return sum
}

// SyncOne syncs a single named source and returns the number of postings it
// created. Unlike SyncAll, a source failure surfaces as an error.
func (c *Coordinator) SyncOne(ctx context.Context, name string) (int, error) {
	for _, f := range c.fetchers {
		if f.Name() != name {
			continue
		}
		rep := c.syncSource(ctx, f)
		if rep.Err != "" {
			return 0, &SourceError{Source: name, Err: fmt.Errorf("%s", rep.Err)}
		}
		return rep.Created, nil
	}
	return 0, fmt.Errorf("unknown source %q", name)
}

func (c *Coordinator) syncSource(ctx context.Context, f Fetcher) SourceReport {
	rep := SourceReport{Source: f.Name()}
	log := c.log.With(zap.String("source", f.Name()))

	fctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	items, err := f.Fetch(fctx)
	if err != nil {
		rep.Err = err.Error()
		log.Warn("source fetch failed", zap.Error(err))
		return rep
	}

	// The fetch timeout must not strand half-written store state, so store
	// operations run against the cycle context, not fctx.
	if err := c.st.UpsertSource(ctx, domain.JobSource{
		Name:        f.Name(),
		DisplayName: f.DisplayName(),
		BaseURL:     f.BaseURL(),
	}); err != nil {
		rep.Err = err.Error()
		log.Error("source upsert failed", zap.Error(err))
		return rep
	}

	now := time.Now().UTC()
	for _, raw := range items {
		p, ok := normalize.Normalize(raw, f.Name())
		if !ok {
			rep.Dropped++
			continue
		}

		outcome, err := normalize.Apply(ctx, c.st, p, now)
		if err != nil {
			// one bad row shouldn't sink the source; count and move on
			rep.Dropped++
			log.Error("apply failed", zap.String("sourceId", p.SourceID), zap.Error(err))
			continue
		}
		switch outcome {
		case normalize.OutcomeCreated:
			rep.Created++
			if c.onCreated != nil {
				c.onCreated(p)
			}
		case normalize.OutcomeUpdated:
			rep.Updated++
		default:
			rep.Unchanged++
		}
	}

	if err := c.st.MarkSourceSynced(ctx, f.Name(), time.Now()); err != nil {
		log.Error("mark source synced failed", zap.Error(err))
	}

	log.Info("source synced",
		zap.Int("items", len(items)),
		zap.Int("created", rep.Created),
		zap.Int("updated", rep.Updated),
		zap.Int("unchanged", rep.Unchanged),
		zap.Int("dropped", rep.Dropped))
	return rep
}

// CleanupInactive retires postings whose lastSynced is older than daysOld
// days. They stay queryable as inactive history, never deleted.
func (c *Coordinator) CleanupInactive(ctx context.Context, daysOld int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -daysOld)
	n, err := c.st.MarkInactiveBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup inactive: %w", err)
	}
	if n > 0 {
		c.log.Info("retired stale postings", zap.Int64("count", n), zap.Int("daysOld", daysOld))
	}
	return n, nil
}
