// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"strings"
	"unicode"
)

// Split cuts text into chunks of at most size runes. Consecutive chunks
// share overlap runes. A chunk ends at the last paragraph break, line
// break or space inside the window when one falls in its second half.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(strings.TrimSpace(text))
	var chunks []string
	for start := 0; start < len(runes); {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = breakPoint(runes, start, end)
		}

		if c := strings.TrimSpace(string(runes[start:end])); c != "" {
			chunks = append(chunks, c)
		}
		if end == len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// breakPoint returns the preferred end of the window [start, end).
func breakPoint(runes []rune, start, end int) int {
	half := start + (end-start)/2
	for _, sep := range []string{"\n\n", "\n", " "} {
		s := []rune(sep)
		for i := end - len(s); i >= half; i-- {
			if matchAt(runes, i, s) {
				return i + len(s)
			}
		}
	}
	return end
}

func matchAt(runes []rune, i int, sep []rune) bool {
	for j, r := range sep {
		if runes[i+j] != r {
			return false
		}
	}
	return true
}

// stopwords are skipped when scoring chunks against a question.
var stopwords = map[string]bool{
	"the": true, "and": true, "are": true, "for": true, "what": true,
	"how": true, "why": true, "which": true, "with": true, "this": true,
	"that": true, "their": true, "from": true, "does": true, "into": true,
	"about": true, "there": true, "these": true, "those": true, "was": true,
	"were": true, "has": true, "have": true, "its": true, "can": true,
}

// Terms lowercases text and returns its words of three or more letters or
// digits, without stopwords.
func Terms(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) < 3 || stopwords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}
