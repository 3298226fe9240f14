package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertFixture = `
<html><body>
<table>
  <tr><td><a href="https://boards.example/jobs/view/12345?trk=alert">Backend Engineer</a></td></tr>
  <tr><td>Acme Corp · Berlin, Germany</td></tr>
  <tr><td><a href="https://boards.example/jobs/view/12345?trk=alert-logo">View job</a></td></tr>
</table>
<table>
  <tr><td><a href="https://boards.example/jobs/view/67890?trk=alert">Data Engineer</a></td></tr>
  <tr><td>Globex · Remote</td></tr>
</table>
<a href="https://boards.example/unsubscribe">Unsubscribe</a>
<a href="https://boards.example/jobs/search">See all jobs</a>
</body></html>`

func TestExtractAlertItems(t *testing.T) {
	items := extractAlertItems(alertFixture)

	// the two card links plus the search link match the job-link markers;
	// the search link survives as an item but carries a junk title and no
	// proper fields, so the normalizer drops it downstream
	require.GreaterOrEqual(t, len(items), 2)

	first := items[0]
	assert.Equal(t, "Backend Engineer", first["title"])
	assert.Equal(t, "Acme Corp", first["company"])
	assert.Equal(t, "Berlin, Germany", first["location"])
	assert.Equal(t, "https://boards.example/jobs/view/12345", first["url"])
	assert.NotEmpty(t, first["description"])

	second := items[1]
	assert.Equal(t, "Data Engineer", second["title"])
	assert.Equal(t, "Globex", second["company"])
	assert.Equal(t, "Remote", second["location"])
}

func TestExtractAlertItems_DedupsTrackingVariants(t *testing.T) {
	items := extractAlertItems(alertFixture)

	seen := map[string]int{}
	for _, it := range items {
		if u, ok := it["url"].(string); ok {
			seen[u]++
		}
	}
	assert.Equal(t, 1, seen["https://boards.example/jobs/view/12345"],
		"two links with different tracking params collapse to one item")
}

func TestExtractAlertItems_JunkTitleNeverWins(t *testing.T) {
	items := extractAlertItems(alertFixture)
	require.NotEmpty(t, items)
	// "View job" links to the same posting but must not replace the title
	assert.Equal(t, "Backend Engineer", items[0]["title"])
}

func TestLooksLikeJobLink(t *testing.T) {
	assert.True(t, looksLikeJobLink("https://x.example/jobs/view/1"))
	assert.True(t, looksLikeJobLink("https://x.example/viewjob?id=1"))
	assert.False(t, looksLikeJobLink("https://x.example/unsubscribe"))
	assert.False(t, looksLikeJobLink("/jobs/view/1"), "relative links are skipped")
	assert.False(t, looksLikeJobLink("mailto:jobs@x.example"))
}

func TestCanonicalLink(t *testing.T) {
	assert.Equal(t, "https://x.example/jobs/1",
		canonicalLink("https://x.example/jobs/1?trk=abc&ref=mail#top"))
}
