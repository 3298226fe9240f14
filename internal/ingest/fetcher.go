package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jobradar-engine/internal/config"
)

// Fetcher is one configured listing source. All HTTP API sources share the
// APISource implementation parameterized by a config descriptor; the email
// source provides its own.
type Fetcher interface {
	Name() string
	DisplayName() string
	BaseURL() string
	Fetch(ctx context.Context) ([]map[string]any, error)
}

// APISource fetches paginated JSON postings from one listing API.
type APISource struct {
	cfg     config.Source
	apiKey  string
	hc      *http.Client
	limiter *HostLimiter
}

func NewAPISource(cfg config.Source, apiKey string, limiter *HostLimiter) *APISource {
	return &APISource{
		cfg:     cfg,
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: 25 * time.Second},
		limiter: limiter,
	}
}

func (s *APISource) Name() string { return s.cfg.Name }

func (s *APISource) DisplayName() string {
	if s.cfg.DisplayName != "" {
		return s.cfg.DisplayName
	}
	return s.cfg.Name
}

func (s *APISource) BaseURL() string { return s.cfg.BaseURL }

// Fetch walks pages until the configured page count is exhausted or a short
// page signals the end. A failed page fails the whole source fetch; retry
// policy belongs to the next cycle, not this one.
func (s *APISource) Fetch(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any

	for page := 1; page <= s.cfg.Query.Pages; page++ {
		batch, err := s.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		out = append(out, batch...)
		if len(batch) < s.cfg.Query.PageSize {
			break
		}
	}
	return out, nil
}

func (s *APISource) fetchPage(ctx context.Context, page int) ([]map[string]any, error) {
	params := url.Values{}
	if s.cfg.Query.Terms != "" {
		params.Set("q", s.cfg.Query.Terms)
	}
	if s.cfg.Query.Country != "" {
		params.Set("country", s.cfg.Query.Country)
	}
	if s.cfg.Query.MaxDaysOld > 0 {
		params.Set("max_days_old", strconv.Itoa(s.cfg.Query.MaxDaysOld))
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(s.cfg.Query.PageSize))

	reqURL := s.cfg.BaseURL
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	if err := s.limiter.WaitURL(ctx, reqURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "jobradar/1.0 (+local)")
	for k, v := range s.cfg.AuthHeaders {
		req.Header.Set(k, v)
	}
	if s.apiKey != "" && s.cfg.KeyHeader != "" {
		req.Header.Set(s.cfg.KeyHeader, s.apiKey)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	items, err := decodeItems(body)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return items, nil
}
