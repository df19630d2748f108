package domain

import (
	"strings"
	"time"
)

// CatalogEntry is one package of the package-set index: the attribute name
// and the one-line description from its derivation metadata.
type CatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog is the name-to-description index of the configured package set,
// sorted by name. It is fetched from the evaluator and cached on disk.
type Catalog struct {
	Entries   []CatalogEntry `json:"entries"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// Stale reports whether the catalog was fetched more than ttl ago.
// A non-positive ttl means the catalog never goes stale.
func (c *Catalog) Stale(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(c.FetchedAt) > ttl
}

// Filter returns the entries whose name contains substr, case-insensitively.
// An empty substr returns all entries.
func (c *Catalog) Filter(substr string) []CatalogEntry {
	if substr == "" {
		return c.Entries
	}
	needle := strings.ToLower(substr)
	var out []CatalogEntry
	for _, e := range c.Entries {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}
