// Package origin resolves artist countries and continents from an offline
// lookup table. The table is loaded once and treated as immutable, so
// concurrent lookups need no locking.
package origin

import "strings"

// Unknown is the fallback for artists absent from the table.
const Unknown = "Unknown"

// Info is an artist's resolved origin.
type Info struct {
	Country   string `yaml:"country" json:"country"`
	Continent string `yaml:"continent" json:"continent"`
}

// Resolver looks up artist origins. Implementations must be safe for
// concurrent use.
type Resolver interface {
	Lookup(artist string) Info
}

// Table is a Resolver backed by an in-memory map keyed by folded artist
// name. Absent artists resolve to Unknown rather than failing.
type Table struct {
	entries map[string]Info
}

// NewTable builds a Table from artist name to origin info. Keys are matched
// case-insensitively.
func NewTable(entries map[string]Info) *Table {
	m := make(map[string]Info, len(entries))
	for name, info := range entries {
		m[fold(name)] = info
	}
	return &Table{entries: m}
}

func (t *Table) Lookup(artist string) Info {
	if t != nil {
		if info, ok := t.entries[fold(artist)]; ok {
			return info
		}
	}
	return Info{Country: Unknown, Continent: Unknown}
}

// Len reports the number of known artists.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
