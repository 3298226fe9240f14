package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobradar-engine/internal/domain"
	"jobradar-engine/internal/events"
	"jobradar-engine/internal/ingest"
	"jobradar-engine/internal/match"
	"jobradar-engine/internal/scheduler"
	"jobradar-engine/internal/store"
)

type stubFetcher struct {
	name  string
	items []map[string]any
	err   error
}

func (s stubFetcher) Name() string        { return s.name }
func (s stubFetcher) DisplayName() string { return s.name }
func (s stubFetcher) BaseURL() string     { return "https://stub.example" }
func (s stubFetcher) Fetch(context.Context) ([]map[string]any, error) {
	return s.items, s.err
}

func stubItems(n int) []map[string]any {
	items := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, map[string]any{
			"id":          fmt.Sprintf("j-%d", i),
			"title":       fmt.Sprintf("Engineer %d", i),
			"company":     "Acme",
			"description": "Build services in Go.",
		})
	}
	return items
}

func newTestServer(t *testing.T, fetchers []ingest.Fetcher) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := zap.NewNop()
	hub := events.NewHub()
	coord := ingest.NewWithFetchers(st, log, 5*time.Second, fetchers, nil)
	sched := scheduler.New(log, coord.SyncAll,
		coord.CleanupInactive,
		scheduler.Options{FirstDelay: time.Hour, Interval: time.Hour, CleanupChance: 1e-12})

	srv := httptest.NewServer(NewHandler(Deps{
		Store:   st,
		Coord:   coord,
		Sched:   sched,
		Matcher: match.New(st, log),
		Hub:     hub,
		Log:     log,
	}))
	t.Cleanup(srv.Close)
	return srv, st
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var body map[string]any
	code := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
}

func TestJobs_EmptyIsArrayNotNull(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/jobs")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestJobs_ListAndLimit(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p := domain.Posting{
			Title: fmt.Sprintf("Engineer %d", i), Company: "Acme",
			Description: "Build.", Source: "boardx",
			SourceID: fmt.Sprintf("j-%d", i), Active: true,
			LastSynced: time.Now().Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, st.InsertPosting(ctx, &p))
	}

	var jobs []domain.Posting
	code := getJSON(t, srv.URL+"/jobs", &jobs)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, jobs, 3)

	code = getJSON(t, srv.URL+"/jobs?limit=2", &jobs)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, jobs, 2)
}

func TestSyncRun_FullCycle(t *testing.T) {
	srv, st := newTestServer(t, []ingest.Fetcher{
		stubFetcher{name: "good", items: stubItems(2)},
		stubFetcher{name: "bad", err: errors.New("boom")},
	})

	var sum ingest.Summary
	code := postJSON(t, srv.URL+"/sync/run", &sum)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, sum.SuccessCount)
	assert.Equal(t, 1, sum.FailureCount)
	assert.Equal(t, 2, sum.Created)

	n, err := st.CountPostings(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestSyncRun_SingleSource(t *testing.T) {
	srv, _ := newTestServer(t, []ingest.Fetcher{
		stubFetcher{name: "good", items: stubItems(3)},
		stubFetcher{name: "bad", err: errors.New("boom")},
	})

	var out map[string]int
	code := postJSON(t, srv.URL+"/sync/run?source=good", &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, out["created"])

	code = postJSON(t, srv.URL+"/sync/run?source=bad", nil)
	assert.Equal(t, http.StatusBadGateway, code)

	code = postJSON(t, srv.URL+"/sync/run?source=ghost", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSyncRun_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	code := getJSON(t, srv.URL+"/sync/run", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestSyncStatus(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var st scheduler.Status
	code := getJSON(t, srv.URL+"/sync/status", &st)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, st.Syncing)
	assert.False(t, st.TimerActive)
}

func TestSyncCleanup(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()

	stale := domain.Posting{
		Title: "Old", Company: "Acme", Description: "Gone.",
		Source: "boardx", SourceID: "old", Active: true,
		LastSynced: time.Now().AddDate(0, 0, -31),
	}
	require.NoError(t, st.InsertPosting(ctx, &stale))

	var out map[string]int64
	code := postJSON(t, srv.URL+"/sync/cleanup", &out)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, out["retired"])

	code = postJSON(t, srv.URL+"/sync/cleanup?days=nope", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = postJSON(t, srv.URL+"/sync/cleanup?days=-1", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMatches(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()

	code := getJSON(t, srv.URL+"/matches", nil)
	assert.Equal(t, http.StatusBadRequest, code, "user parameter is required")

	var results []domain.MatchResult
	code = getJSON(t, srv.URL+"/matches?user=ghost", &results)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, results)

	require.NoError(t, st.SaveProfile(ctx, domain.Profile{
		UserID: "u1", Skills: []string{"Go"},
		UpdatedAt: time.Now(),
	}))
	p := domain.Posting{
		Title: "Backend", Company: "Acme", Description: "Build things",
		Source: "boardx", SourceID: "j-1", Active: true,
		LastSynced: time.Now(), RequiredSkills: []string{"Go"},
	}
	require.NoError(t, st.InsertPosting(ctx, &p))

	code = getJSON(t, srv.URL+"/matches?user=u1", &results)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, results, 1)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/jobs", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestEventsSSE_PingOnConnect(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	require.True(t, sc.Scan())
	assert.Equal(t, "event: ping", sc.Text())
}
