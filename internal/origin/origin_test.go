package origin

import "testing"

func TestLookup(t *testing.T) {
	table := NewTable(map[string]Info{
		"Björk":     {Country: "Iceland", Continent: "Europe"},
		"Khruangbin": {Country: "United States", Continent: "North America"},
	})

	if got := table.Lookup("björk"); got.Country != "Iceland" {
		t.Errorf("case-insensitive lookup failed: %+v", got)
	}
	if got := table.Lookup("  Khruangbin "); got.Continent != "North America" {
		t.Errorf("whitespace-insensitive lookup failed: %+v", got)
	}
	if got := table.Lookup("Nobody"); got.Country != Unknown || got.Continent != Unknown {
		t.Errorf("missing artist should resolve to Unknown, got %+v", got)
	}
}

func TestNilTable(t *testing.T) {
	var table *Table
	if got := table.Lookup("anyone"); got.Country != Unknown {
		t.Errorf("nil table should still resolve to Unknown, got %+v", got)
	}
	if table.Len() != 0 {
		t.Errorf("nil table Len = %d, want 0", table.Len())
	}
}
