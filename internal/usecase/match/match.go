// Package match implements the topic keyword matcher (spec §4.5): a pure,
// stdlib-only function with no external dependency to ground (no third-party
// library in the pack does case-insensitive substring OR-matching better
// than strings.Contains), the same single-purpose-leaf shape as the
// teacher's internal/utils/text package.
package match

import (
	"strings"

	"catchup-feed/internal/domain/entity"
)

// Candidate is one ingested item awaiting topic assignment, carrying only
// the fields the matcher reads.
type Candidate struct {
	Title   string
	Snippet string
}

// Match computes searchable := lower(title + " " + snippet) and returns the
// set of topic ids whose keyword set contains at least one keyword that is
// a substring of searchable. Topics with an empty keyword set never match
// here; they are aggregator-search-only and delete-cascade-only (spec
// §4.5). The returned slice is nil, not empty, when nothing matches, so
// callers can treat a nil result as "drop this item".
func Match(c Candidate, topics []entity.Topic) []int64 {
	searchable := strings.ToLower(c.Title + " " + c.Snippet)

	var matched []int64
	for _, t := range topics {
		if !t.Enabled || len(t.Keywords) == 0 {
			continue
		}
		if matchesAny(searchable, t.Keywords) {
			matched = append(matched, t.ID)
		}
	}
	return matched
}

func matchesAny(searchable string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(searchable, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
