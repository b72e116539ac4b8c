package entity

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxKeywordsPerTopic = 20
	maxKeywordLength    = 100
)

// Topic is a user-defined bundle of keywords used to filter and tag
// ingested articles. (UserID, Name) is unique.
type Topic struct {
	ID            int64
	UserID        string
	Name          string
	Keywords      []string
	Enabled       bool
	LastFetchedAt *time.Time // nil means "never fetched"
}

// Cutoff returns the incremental fetch cutoff for this topic: LastFetchedAt
// if set, otherwise now-7 days.
func (t *Topic) Cutoff(now time.Time) time.Time {
	if t.LastFetchedAt != nil {
		return *t.LastFetchedAt
	}
	return now.Add(-7 * 24 * time.Hour)
}

// HasKeywords reports whether the topic contributes to RSS/aggregator
// matching at all; topics with no keywords are never matched.
func (t *Topic) HasKeywords() bool {
	return len(t.Keywords) > 0
}

// Validate checks the Topic invariants from the data model: keyword count
// and length bounds, and that every keyword is a trimmed, non-empty string.
func (t *Topic) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(t.Keywords) > maxKeywordsPerTopic {
		return &ValidationError{
			Field:   "keywords",
			Message: fmt.Sprintf("at most %d keywords are allowed", maxKeywordsPerTopic),
		}
	}
	for i, kw := range t.Keywords {
		trimmed := strings.TrimSpace(kw)
		if trimmed == "" {
			return &ValidationError{Field: "keywords", Message: fmt.Sprintf("keyword %d must not be blank", i)}
		}
		if len(trimmed) > maxKeywordLength {
			return &ValidationError{
				Field:   "keywords",
				Message: fmt.Sprintf("keyword %d exceeds %d characters", i, maxKeywordLength),
			}
		}
		t.Keywords[i] = trimmed
	}
	return nil
}
