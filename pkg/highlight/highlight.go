// Package highlight marks the nodes that match a keyword filter. It only
// touches renderer-facing visual state, never positions or membership.
package highlight

import (
	"strings"
	"unicode"

	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/visualization"
)

// Tokenize splits a keyword query on whitespace and commas, lower-cases the
// pieces and drops empty ones.
func Tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Matches reports whether every token occurs somewhere in the job's title,
// description or skills. Tokens must already be lower-cased; no tokens
// never match.
func Matches(job *jobs.Job, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	title := strings.ToLower(job.Title)
	description := strings.ToLower(job.Description)
	skills := strings.ToLower(strings.Join(job.Skills, " "))
	for _, tok := range tokens {
		if !strings.Contains(title, tok) &&
			!strings.Contains(description, tok) &&
			!strings.Contains(skills, tok) {
			return false
		}
	}
	return true
}

// Apply resets every node's match mark and then marks the nodes matching
// all tokens. It returns the number of matches.
func Apply(clusters []*visualization.Cluster, tokens []string) int {
	matched := 0
	for _, c := range clusters {
		for _, n := range c.Nodes {
			n.Visual.Matching = false
		}
	}
	if len(tokens) == 0 {
		return 0
	}
	for _, c := range clusters {
		for _, n := range c.Nodes {
			if Matches(&n.Job, tokens) {
				n.Visual.Matching = true
				matched++
			}
		}
	}
	return matched
}
