package match

import (
	"strings"
	"unicode"
)

// stopWords are common English words that add noise to keyword matching.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "such": true,
	"per": true, "etc": true, "within": true, "across": true,
}

// tokenize splits text into a lowercase keyword set, keeping words longer
// than two characters and skipping stop words. + # . count as word
// characters so "c++", "c#", and "node.js" survive.
func tokenize(text string) map[string]bool {
	kw := make(map[string]bool)
	var word strings.Builder

	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if len([]rune(w)) > 2 && !stopWords[w] {
			kw[w] = true
		}
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return kw
}

// overlapBySubstring counts posting keywords that any candidate keyword
// matches exactly or by containment in either direction.
func overlapBySubstring(posting, candidate map[string]bool) int {
	n := 0
	for pk := range posting {
		if candidate[pk] {
			n++
			continue
		}
		for ck := range candidate {
			if strings.Contains(pk, ck) || strings.Contains(ck, pk) {
				n++
				break
			}
		}
	}
	return n
}
