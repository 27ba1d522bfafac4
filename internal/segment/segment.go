// Package segment splits section bodies into candidate sentences for story extraction.
package segment

import (
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinSentenceRunes is the shortest fragment kept as a candidate sentence
const MinSentenceRunes = 10

// Full-width terminators and newlines always split; ASCII terminators split
// only before whitespace or end of text so decimals and versions survive.
var sentenceBoundary = regexp.MustCompile(`[。！？；\n]+|[.!?;]+(?:\s+|$)`)

// Sentences returns the candidate sentences of body in source order.
// The sequence is lazy and can be iterated any number of times.
func Sentences(body string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := body
		for rest != "" {
			var fragment string
			if loc := sentenceBoundary.FindStringIndex(rest); loc != nil {
				fragment, rest = rest[:loc[0]], rest[loc[1]:]
			} else {
				fragment, rest = rest, ""
			}

			fragment = strings.TrimSpace(fragment)
			if utf8.RuneCountInString(fragment) < MinSentenceRunes {
				continue
			}
			if !yield(fragment) {
				return
			}
		}
	}
}

// Collect materializes the candidate sentences of body
func Collect(body string) []string {
	var out []string
	for s := range Sentences(body) {
		out = append(out, s)
	}
	return out
}
