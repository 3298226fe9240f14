package normalize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTagRe = regexp.MustCompile(`<\s*/?\s*[a-zA-Z][^>]*>`)

// StripHTML flattens HTML descriptions (lever, greenhouse, and most boards
// ship them) to plain text. Plain-text input passes through untouched.
func StripHTML(s string) string {
	if !htmlTagRe.MatchString(s) {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		// fall back to a crude tag strip rather than dropping the item
		return htmlTagRe.ReplaceAllString(s, " ")
	}

	// keep list items and paragraphs separated so markers stay findable
	doc.Find("li, p, br, div, h1, h2, h3, h4").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	return doc.Text()
}
