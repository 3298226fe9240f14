package ingest

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobradar-engine/internal/normalize"
)

// extractAlertItems pulls job cards out of a job-alert email body. Alert
// templates differ per provider, so this stays structural: any outbound
// job link plus whatever company/location text sits in the same card.
// Items missing mandatory fields get dropped later by the normalizer.
func extractAlertItems(htmlBody string) []map[string]any {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil
	}

	byURL := map[string]map[string]any{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !looksLikeJobLink(href) {
			return
		}
		jobURL := canonicalLink(href)
		if jobURL == "" {
			return
		}

		item, ok := byURL[jobURL]
		if !ok {
			item = map[string]any{
				"id":  "alert:" + shortHash(jobURL),
				"url": jobURL,
			}
			byURL[jobURL] = item
			order = append(order, jobURL)
		}

		title := normalize.CleanText(a.Text())
		if betterTitle(title, stringAt(item, "title")) {
			item["title"] = title
		}

		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		// "Company · Location" is the common alert card layout
		card.Find("p, td, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			t := normalize.CleanText(sel.Text())
			if t == "" || !strings.Contains(t, " · ") || strings.Count(t, " · ") > 2 {
				return true
			}
			parts := strings.SplitN(t, " · ", 2)
			if stringAt(item, "company") == "" {
				item["company"] = strings.TrimSpace(parts[0])
			}
			if stringAt(item, "location") == "" {
				item["location"] = strings.TrimSpace(parts[1])
			}
			return false
		})

		if stringAt(item, "description") == "" {
			if blob := normalize.CleanText(card.Text()); blob != "" {
				item["description"] = blob
			}
		}
	})

	out := make([]map[string]any, 0, len(order))
	for _, u := range order {
		out = append(out, byURL[u])
	}
	return out
}

func looksLikeJobLink(href string) bool {
	low := strings.ToLower(href)
	if !strings.HasPrefix(low, "http") {
		return false
	}
	for _, marker := range []string{"/jobs/view/", "/jobs/", "/job/", "/viewjob", "/posting/"} {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return false
}

// canonicalLink strips tracking query params so the same posting linked from
// multiple card elements dedups to one item.
func canonicalLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func betterTitle(cand, cur string) bool {
	if cand == "" || looksLikeJunkTitle(cand) {
		return false
	}
	return len(cand) > len(cur)
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return strings.Contains(l, "view") || strings.Contains(l, "apply") || strings.Contains(l, "see all")
}

func stringAt(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return s
}

func shortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:6])
}
