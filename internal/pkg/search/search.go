// Package search holds small helpers shared by every ILIKE-based keyword
// search: parsing the raw query parameter, escaping it for a safe ILIKE
// pattern, and a default timeout for the resulting query.
package search

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultMaxKeywordCount bounds how many AND-joined keywords a single
	// search request may supply.
	DefaultMaxKeywordCount = 10
	// DefaultMaxKeywordLength bounds the length of a single keyword.
	DefaultMaxKeywordLength = 100
	// DefaultSearchTimeout caps how long a multi-keyword ILIKE search may run.
	DefaultSearchTimeout = 5 * time.Second
)

// ParseKeywords splits a raw, comma-separated search parameter into trimmed,
// non-empty keywords, enforcing maxCount and maxLength.
func ParseKeywords(raw string, maxCount, maxLength int) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		kw := strings.TrimSpace(p)
		if kw == "" {
			continue
		}
		if len(kw) > maxLength {
			return nil, fmt.Errorf("keyword %q exceeds %d characters", kw, maxLength)
		}
		keywords = append(keywords, kw)
	}

	if len(keywords) > maxCount {
		return nil, fmt.Errorf("at most %d keywords are allowed", maxCount)
	}
	return keywords, nil
}

// EscapeILIKE escapes ILIKE wildcard characters (`%`, `_`, `\`) in a keyword
// and wraps it for a "contains" match.
func EscapeILIKE(keyword string) string {
	escaped := strings.NewReplacer(
		`\`, `\\`,
		`%`, `\%`,
		`_`, `\_`,
	).Replace(keyword)
	return "%" + escaped + "%"
}
