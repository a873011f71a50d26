// Package summary turns free-text notes into short summaries.
//
// A generation backend proposes a summary; Normalize coerces whatever it
// returned into a clean sentence of at most MaxWords words, and Fallback
// derives one deterministically when the backend failed or produced
// something unusable.
package summary

import (
	"strings"
)

const (
	// MaxWords is the word ceiling for every summary.
	MaxWords = 20

	minWords = 3
)

// leadIns are stripped from the start of generated text, first match only.
var leadIns = []string{
	"Summary:",
	"Concise summary:",
	"Here's a summary:",
	"Here is a summary:",
	"The summary is:",
}

// Normalize returns the cleaned generated text, or Fallback(note) when the
// outcome failed or the cleaned text does not pass the quality gate.
func Normalize(o Outcome, note string) string {
	text, _ := normalize(o, note)
	return text
}

func normalize(o Outcome, note string) (string, Source) {
	raw, ok := o.Text()
	if !ok {
		return Fallback(note), SourceFallback
	}
	if s, ok := clean(raw); ok {
		return s, SourceModel
	}
	return Fallback(note), SourceFallback
}

// clean applies the text rules to generated output and reports whether the
// result is usable.
func clean(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = stripLeadIn(s)
	s = unquote(s, '"')
	s = unquote(s, '\'')

	words := strings.Fields(s)
	switch {
	case len(words) > MaxWords:
		s = strings.TrimRight(strings.Join(words[:MaxWords], " "), ",-;:") + "."
	case len(words) > 0 && !endsSentence(s):
		s += "."
	}

	if s == "" || len(strings.Fields(s)) < minWords {
		return "", false
	}
	return s, true
}

// Fallback summarizes note without a model. Notes of MaxWords words or
// fewer come back verbatim.
func Fallback(note string) string {
	words := strings.Fields(note)
	if len(words) <= MaxWords {
		return note
	}
	s := strings.Join(words[:MaxWords], " ")
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i+1]
	}
	return s + "..."
}

func stripLeadIn(s string) string {
	for _, p := range leadIns {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return strings.TrimSpace(s[len(p):])
		}
	}
	return s
}

func unquote(s string, q byte) string {
	if len(s) >= 2 && s[0] == q && s[len(s)-1] == q {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func endsSentence(s string) bool {
	switch s[len(s)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
