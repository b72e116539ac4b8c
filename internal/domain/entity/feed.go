package entity

import "strings"

// Feed is a user-configured RSS/Atom source. (UserID, URL) is unique and the
// URL must pass ValidateURL (the SSRF-safe validator).
type Feed struct {
	ID      int64
	UserID  string
	Name    string
	URL     string
	Enabled bool
}

// Validate checks the Feed invariants: a non-empty name and an
// SSRF-safe URL.
func (f *Feed) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	return ValidateURL(f.URL)
}

// URLCacheEntry maps an aggregator's opaque article identifier to its
// resolved publisher URL. This table is global, not per-user: a successful
// resolution for one user benefits every other user who later meets the
// same opaque id.
type URLCacheEntry struct {
	ID          string // opaque aggregator identifier
	ResolvedURL string
}
