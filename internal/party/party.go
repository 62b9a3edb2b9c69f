// Package party identifies and normalizes contracting-party names.
package party

import "strings"

// placeholders are generic stand-in labels a model may emit instead of real
// names. Matching is exact after trimming and lowercasing, never substring,
// so "Party Planning Co." survives while "Party A" does not.
var placeholders = map[string]struct{}{
	"party a":          {},
	"party b":          {},
	"party c":          {},
	"party 1":          {},
	"party 2":          {},
	"party 3":          {},
	"party one":        {},
	"party two":        {},
	"first party":      {},
	"second party":     {},
	"plaintiff":        {},
	"defendant":        {},
	"could-not-detect": {},
	"unknown":          {},
	"n/a":              {},
}

// IsPlaceholder reports whether name is a generic non-identifying label.
func IsPlaceholder(name string) bool {
	_, ok := placeholders[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Normalize cleans a raw candidate list: trims whitespace, drops empty
// entries and placeholder labels, and removes case-insensitive duplicates
// keeping the first occurrence's casing and the original order. An empty
// result means detection failed, not that the document has no parties.
func Normalize(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := placeholders[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
